package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/resybot/pkg/browser"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download the Playwright driver and Chromium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := browser.NewManager()
			manager.SetOutput(cmd.OutOrStdout())
			if err := manager.Install(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Browser installed")
			return nil
		},
	}
}
