package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
	"github.com/entrhq/resybot/pkg/notify"
)

func newNotifyTestCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test email through the configured SMTP relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, config.Overrides{})
			if err != nil {
				return err
			}
			if !cfg.Notify.Enabled {
				return fmt.Errorf("notifications are disabled in the configuration")
			}

			logger, _ := logging.NewLogger("notify-test")
			defer logger.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			n := notify.NewSMTPNotifier(cfg.Notify, logger)
			err = n.Notify(ctx, notify.Message{
				Kind:    notify.KindSuccess,
				Subject: "Resy Bot test notification",
				Body:    fmt.Sprintf("This is a test message from resybot v%s.\nRun ID: %s", version, logger.RunID()),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sent test notification to %d recipient(s)\n", len(cfg.Notify.Recipients))
			return nil
		},
	}
}
