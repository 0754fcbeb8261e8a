package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uyouii/clinical-tokenizer/catalog"
	"gopkg.in/yaml.v3"
)

func (a *app) catalogCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the built-in variable catalog and disease templates",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "catalog YAML to use instead of the built-in one")

	load := func() (*catalog.Catalog, error) {
		if file != "" {
			return catalog.LoadFile(file)
		}
		return catalog.Load()
	}

	var domain string
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			domains := c.Domains()
			if domain != "" {
				domains = []string{domain}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDOMAIN\tUNIT\tNORMAL\tANCHORS")
			for _, d := range domains {
				for _, def := range c.ByDomain(d) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%g-%g\t%d\n", def.ID, def.Domain, def.Unit,
						def.NormalRange.Lower, def.NormalRange.Upper, len(def.DefaultAnchors))
				}
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&domain, "domain", "", "only list one domain")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one catalog definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			def, err := c.Lookup(args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(def)
			if err != nil {
				return fmt.Errorf("marshal definition: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	templates := &cobra.Command{
		Use:   "templates",
		Short: "List disease templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVARIABLES")
			for _, tmpl := range c.Templates {
				fmt.Fprintf(w, "%s\t%s\t%d\n", tmpl.ID, tmpl.Name, len(tmpl.Variables))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, show, templates)
	return cmd
}
