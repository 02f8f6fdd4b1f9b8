package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spetersoncode/nollama"
	"github.com/spf13/cobra"
)

func newModelsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models of one or all configured providers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			providers := cfg.Configured()
			if len(args) == 1 {
				p, err := nollama.ParseProvider(args[0])
				if err != nil {
					return err
				}
				providers = []nollama.Provider{p}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			a := newApp(ctx, cfg)
			defer a.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, p := range providers {
				models, err := a.client.ListModels(ctx, p)
				if err != nil {
					return fmt.Errorf("listing %s models: %w", p.DisplayName(), err)
				}
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s\n", p.DisplayName())
				for _, m := range models {
					name := m.DisplayName
					if name == m.ID {
						name = ""
					}
					fmt.Fprintf(w, "  %s\t%s\n", m.ID, name)
				}
			}
			return w.Flush()
		},
	}
}
