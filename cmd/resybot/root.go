package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/entrhq/resybot/pkg/config"
)

// globalOptions are the flags shared by every command that reads the config.
type globalOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	book := newBookCmd(opts)

	root := &cobra.Command{
		Use:   "resybot",
		Short: "Book a Resy reservation from a ranked list of times",
		Long: `resybot logs in to Resy, opens a venue page, picks the party size and date,
and books the first offered time from your ranked preferences. The outcome
is emailed to the configured recipients.

Running resybot without a subcommand is the same as "resybot book".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          book.RunE,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")

	// The root command books too, so it takes the booking flags.
	root.Flags().AddFlagSet(book.Flags())

	root.AddCommand(
		book,
		newValidateCmd(opts),
		newNotifyTestCmd(opts),
		newInstallCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the resybot version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resybot v%s\n", version)
		},
	}
}

// loadConfig layers the config file, the environment and the given
// overrides onto the defaults, prompts for a missing password when
// attached to a terminal, and validates the result. A config that loads
// but fails validation is returned along with the error.
func loadConfig(opts *globalOptions, overrides config.Overrides) (*config.Config, error) {
	if _, err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	overrides.Apply(cfg)

	if cfg.Account.Password == "" && cfg.Account.Email != "" && isInteractive() {
		password, err := promptPassword(fmt.Sprintf("Resy password for %s: ", cfg.Account.Email))
		if err != nil {
			return nil, err
		}
		cfg.Account.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
