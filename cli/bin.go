package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/ecdf"
	"github.com/uyouii/clinical-tokenizer/export"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
	"github.com/uyouii/clinical-tokenizer/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type inputFlags struct {
	variable string
	data     string
	raw      bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.variable, "variable", "", "variable config YAML (name, unit, direction, normal_range, anchors, zone_configs)")
	cmd.Flags().StringVar(&f.data, "data", "", "ECDF CSV (value,cumulative_probability)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "treat --data as one raw measurement per row")
	_ = cmd.MarkFlagRequired("variable")
	_ = cmd.MarkFlagRequired("data")
}

func (a *app) binCommand() *cobra.Command {
	var in inputFlags
	var out string

	cmd := &cobra.Command{
		Use:   "bin",
		Short: "Generate anchor-preserving bins for one variable",
		Example: `  cliftok bin --variable lactate.yaml --data lactate_ecdf.csv
  cliftok bin --variable map.yaml --data map_values.csv --raw --out exports/map`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := utils.GetLogger(ctx)

			cfg, dist, dataRange, err := a.loadInputs(cmd, in)
			if err != nil {
				return err
			}

			bins, err := binning.GenerateBins(cfg, dist, dataRange)
			if err != nil {
				return fmt.Errorf("generate bins: %w", err)
			}
			if missing := binning.MissingAnchors(bins, cfg.AnchorValues()); len(missing) > 0 {
				return fmt.Errorf("anchors %v: %w", missing, common.ErrorAnchorNotPreserved)
			}
			printMessages(cmd.ErrOrStderr(), validation.BinSparsity(bins, a.cfg.SparsityThreshold))

			if out == "" {
				out = filepath.Join(a.cfg.OutputDir, export.Identifier(cfg.Name))
			}
			generatedAt, err := a.timestamp()
			if err != nil {
				return err
			}
			paths, err := export.WriteAll(ctx, out, bins, cfg, generatedAt)
			if err != nil {
				return err
			}

			if q, err := ecdf.Quantile(dist, 0.5); err == nil {
				logger.Info("distribution median", zap.String("variable", cfg.Name), zap.Float64("median", q.Value))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bins, anchors preserved\n", cfg.Name, len(bins))
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: <output_dir>/<variable>)")
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a variable config and its data before binning",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readVariable(in.variable)
			if err != nil {
				return err
			}
			dist, err := a.readDistribution(cmd.Context(), in.data, in.raw)
			if err != nil {
				return err
			}
			var dataRange *model.DataRange
			if r, err := ecdf.DataRangeOf(dist); err == nil {
				dataRange = &r
			}

			res := validation.Configuration(cfg, dist, dataRange)
			data, err := yaml.Marshal(res)
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return res.Err()
		},
	}
	in.register(cmd)
	return cmd
}

func (a *app) checkAnchorsCommand() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "check-anchors",
		Short: "Re-check anchor preservation in a generated JSON specification",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(manifest)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			bins, anchors, err := export.ManifestEdges(data)
			if err != nil {
				return err
			}
			if missing := binning.MissingAnchors(bins, anchors); len(missing) > 0 {
				return fmt.Errorf("%s: anchors %v: %w", manifest, missing, common.ErrorAnchorNotPreserved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d anchors preserved across %d bins\n", manifest, len(anchors), len(bins))
			return nil
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "specification JSON written by bin")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

// loadInputs reads and validates the inputs of a single variable. Warnings go
// to stderr; validation errors abort.
func (a *app) loadInputs(cmd *cobra.Command, in inputFlags) (*model.VariableConfig, model.Distribution, model.DataRange, error) {
	cfg, err := readVariable(in.variable)
	if err != nil {
		return nil, nil, model.DataRange{}, err
	}
	dist, err := a.readDistribution(cmd.Context(), in.data, in.raw)
	if err != nil {
		return nil, nil, model.DataRange{}, err
	}
	dataRange, err := ecdf.DataRangeOf(dist)
	if err != nil {
		return nil, nil, model.DataRange{}, err
	}

	res := validation.Configuration(cfg, dist, &dataRange)
	printMessages(cmd.ErrOrStderr(), res.Warnings)
	if !res.Valid() {
		printMessages(cmd.ErrOrStderr(), res.Errors)
		return nil, nil, model.DataRange{}, errors.Join(common.ErrorInvalidConfig, res.Err())
	}
	return cfg, dist, dataRange, nil
}

func printMessages(w io.Writer, messages []validation.Message) {
	for _, m := range messages {
		fmt.Fprintf(w, "%s: %s: %s\n", m.Level, m.Field, m.Message)
	}
}
