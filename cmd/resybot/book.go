package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/entrhq/resybot/pkg/booking"
	"github.com/entrhq/resybot/pkg/browser"
	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
	"github.com/entrhq/resybot/pkg/notify"
)

type bookOptions struct {
	overrides config.Overrides
	headless  bool
	dryRun    bool
	timeout   time.Duration
}

func newBookCmd(global *globalOptions) *cobra.Command {
	opts := &bookOptions{}

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a table now",
		Example: `  # Book with settings from .env
  resybot book

  # Try a different date and party size without booking
  resybot book --date 2025-08-05 --party 2 --dry-run

  # Ranked times, highest priority first
  resybot book --times "7:00 PM,7:15 PM,6:45 PM" --headless`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("headless") {
				opts.overrides.Headless = &opts.headless
			}
			if cmd.Flags().Changed("dry-run") {
				opts.overrides.DryRun = &opts.dryRun
			}
			return runBook(cmd.Context(), global, opts)
		},
	}

	bindBookFlags(cmd.Flags(), opts)

	return cmd
}

func bindBookFlags(f *pflag.FlagSet, opts *bookOptions) {
	f.StringVar(&opts.overrides.VenueURL, "venue", "", "Venue page URL (overrides RESY_VENUE_URL)")
	f.StringVarP(&opts.overrides.Date, "date", "d", "", "Reservation date, YYYY-MM-DD (overrides RESY_DATE)")
	f.IntVarP(&opts.overrides.PartySize, "party", "p", 0, "Party size (overrides RESY_PARTY_SIZE)")
	f.StringVarP(&opts.overrides.Times, "times", "t", "", "Comma-separated ranked times (overrides RESY_TIMES)")
	f.BoolVar(&opts.headless, "headless", false, "Run the browser without a window")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Stop before clicking 'Reserve Now'")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this long (0 means no limit)")
	f.StringVar(&opts.overrides.SummaryFile, "summary", "", "Write a JSON run summary to this file")
	f.StringVarP(&opts.overrides.Verbosity, "verbosity", "v", "", "Console verbosity: quiet, normal, verbose or debug")
	f.BoolVar(&opts.overrides.NoNotify, "no-notify", false, "Do not send the outcome email")
}

func runBook(ctx context.Context, global *globalOptions, opts *bookOptions) error {
	cfg, err := loadConfig(global, opts.overrides)
	if err != nil {
		if cfg != nil {
			if nerr := notifyConfigError(ctx, cfg, err, logging.Discard("resybot")); nerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not send error email: %v\n", nerr)
			}
		}
		return err
	}

	logger, err := logging.NewLogger("resybot")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	logger.Infof("resybot v%s, config: %+v", version, cfg.Masked())

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	manager := browser.NewManager()
	manager.SetOutput(logger.Writer())

	reporter := booking.NewReporter(booking.ParseLogLevel(cfg.Logging.Verbosity))
	executor, err := booking.NewExecutor(cfg, manager, newNotifier(cfg, logger), reporter, logger)
	if err != nil {
		return err
	}

	if _, err := executor.Run(ctx); err != nil {
		return fmt.Errorf("booking failed: %w", err)
	}
	return nil
}

func newNotifier(cfg *config.Config, logger *logging.Logger) notify.Notifier {
	if !cfg.Notify.Enabled {
		return notify.Disabled{Logger: logger}
	}
	return notify.NewSMTPNotifier(cfg.Notify, logger)
}

// notifyConfigError emails a configuration error when the notify section
// is enabled and usable on its own.
func notifyConfigError(ctx context.Context, cfg *config.Config, cause error, logger *logging.Logger) error {
	if !cfg.Notify.Enabled {
		return nil
	}
	if err := cfg.Notify.Validate(); err != nil {
		return err
	}

	msg := booking.Notification(&booking.Result{
		RunID:      logger.RunID(),
		Status:     booking.StatusFailed,
		Venue:      cfg.Reservation.VenueURL,
		Date:       cfg.Reservation.Date,
		PartySize:  cfg.Reservation.PartySize,
		FailedStep: "configuration",
	}, cause)

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	return newNotifier(cfg, logger).Notify(nctx, msg)
}
