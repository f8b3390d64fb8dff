package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/config"
	"github.com/roach88/waggle/internal/logging"
)

// RootOptions carries global flags plus the collaborators built once in the
// root PersistentPreRunE. Tests populate the struct directly and skip the
// pre-run.
type RootOptions struct {
	ConfigFile string
	LogLevel   string

	Config config.Config
	Logger *zap.Logger
	Client *beeminder.Client
}

// NewRootCommand creates the waggle root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "waggle",
		Short:         "Edit Beeminder datapoints in bulk or in place",
		Long:          "waggle fetches a goal's datapoints and lets you edit them:\nin your text editor as a tab-separated file, or interactively in a table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewAddBatchCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	v := config.NewViper()
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	o.Config = cfg

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "build logger", err)
	}
	o.Logger = logger

	o.Client = beeminder.NewClient(cfg.AuthToken,
		beeminder.WithUsername(cfg.Username),
		beeminder.WithBaseURL(cfg.APIBaseURL),
	)
	return nil
}

// requireToken guards commands that talk to the API.
func (o *RootOptions) requireToken() error {
	if strings.TrimSpace(o.Config.AuthToken) != "" {
		return nil
	}
	return NewExitError(ExitCommandError,
		"no auth token configured: set auth.token, auth.token_env or auth.token_cmd (or WAGGLE_AUTH_TOKEN)")
}

func fmtCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
