package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/resybot/pkg/config"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print it with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, config.Overrides{})
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg.Masked())
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "# configuration is valid")
			_, err = w.Write(out)
			return err
		},
	}
}
