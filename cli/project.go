package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/uyouii/clinical-tokenizer/catalog"
	"github.com/uyouii/clinical-tokenizer/metrics"
	"github.com/uyouii/clinical-tokenizer/project"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
)

func (a *app) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Bin a set of variables together and export a project bundle",
	}
	cmd.AddCommand(a.projectBuildCommand())
	return cmd
}

func (a *app) projectBuildCommand() *cobra.Command {
	var (
		templateID string
		name       string
		custom     []string
		dataDir    string
		raw        bool
		out        string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every variable of a project that has data",
		Long: `Build creates a project from a disease template and/or custom variable
configs, loads <data-dir>/<variable id>.csv for each variable when present,
bins every variable with data in parallel and writes the project bundle.`,
		Example: `  cliftok project build --template sepsis --data-dir ./ecdfs
  cliftok project build --custom lactate.yaml --custom map.yaml --data-dir ./raw --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := utils.GetLogger(ctx)

			if templateID == "" && len(custom) == 0 {
				return errors.New("one of --template or --custom is required")
			}

			var p *project.Project
			if templateID != "" {
				c, err := catalog.Load()
				if err != nil {
					return err
				}
				if p, err = project.FromTemplate(c, templateID); err != nil {
					return err
				}
			} else {
				p = project.New(name, "")
			}
			if name != "" {
				p.Name = name
			}
			for _, path := range custom {
				cfg, err := readVariable(path)
				if err != nil {
					return err
				}
				if _, err := p.AddCustom(cfg); err != nil {
					return err
				}
			}

			for _, v := range p.Variables {
				path := filepath.Join(dataDir, v.ID+".csv")
				if _, err := os.Stat(path); err != nil {
					logger.Debug("no data for variable", zap.String("variable", v.ID))
					continue
				}
				dist, err := a.readDistribution(ctx, path, raw)
				if err != nil {
					return fmt.Errorf("%s: %w", v.ID, err)
				}
				if err := p.SetData(v.ID, dist); err != nil {
					return err
				}
			}

			builder := project.NewBuilder(
				project.WithWorkers(a.cfg.Workers),
				project.WithCacheTTL(a.cfg.CacheTTL),
				project.WithSparsityThreshold(a.cfg.SparsityThreshold),
				project.WithMetrics(metrics.New(prometheus.NewRegistry(), metrics.WithNamespace(a.cfg.MetricsNamespace))),
			)
			if err := builder.Build(ctx, p); err != nil {
				if ctx.Err() != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "some variables were not binned: %v\n", err)
			}

			if out == "" {
				out = filepath.Join(a.cfg.OutputDir, "project")
			}
			generatedAt, err := a.timestamp()
			if err != nil {
				return err
			}
			paths, err := project.WriteBundle(ctx, out, p, generatedAt)
			if err != nil {
				return err
			}

			meta := p.Metadata()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d variables, %d with data, %d binned\n",
				p.Name, meta.TotalVariables, meta.WithData, meta.Binned)
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&templateID, "template", "", "disease template id (see catalog templates)")
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringArrayVar(&custom, "custom", nil, "custom variable config YAML, repeatable")
	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "directory holding <variable id>.csv files")
	cmd.Flags().BoolVar(&raw, "raw", false, "data files hold raw measurements instead of ECDFs")
	cmd.Flags().StringVar(&out, "out", "", "bundle directory (default: <output_dir>/project)")
	return cmd
}
