// Package commands is the meetapp command line: the TUI at the root plus a
// few headless subcommands that drive the same list controller.
package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abelbrown/meetapp/internal/config"
)

// ErrReported is returned by commands that already told the user what went
// wrong. Callers should exit non-zero without printing it again.
var ErrReported = errors.New("reported")

// Build metadata, set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// New returns the root command.
func New() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "meetapp",
		Short: "Browse meetups by day and subscribe to them.",
		Long: `Browse meetups by day and subscribe to them.

Run without arguments for the terminal UI, or use the subcommands for
scripting. Settings come from ~/.meetapp/.meetapp.yaml, MEETAPP_* environment
variables and the flags below, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	addGlobalFlags(cmd.PersistentFlags(), v)
	AddCommands(cmd, v)
	return cmd
}

// AddCommands registers the subcommands on topLevel.
func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addList(topLevel, v)
	addSubscribe(topLevel, v)
	addDevserver(topLevel, v)
	addConfig(topLevel)
	addVersion(topLevel)
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"api-url":      "api_url",
	"token":        "token",
	"user":         "user_id",
	"page-size":    "page_size",
	"locale":       "locale",
	"data-dir":     "data_dir",
	"offline":      "offline",
	"metrics-addr": "metrics_addr",
	"debug":        "debug",
}

func addGlobalFlags(f *pflag.FlagSet, v *viper.Viper) {
	f.String("api-url", "", "Base URL of the meetup API.")
	f.String("token", "", "Bearer token sent with every request.")
	f.Int("user", 0, "Signed-in user id.")
	f.Int("page-size", 0, "Meetups requested per page.")
	f.String("locale", "", "Locale for dates, e.g. en-US or pt-BR.")
	f.String("data-dir", "", "Directory for the cache, event log and log files.")
	f.Bool("offline", false, "Browse the local cache instead of the API.")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	f.Bool("debug", false, "Log at debug level.")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
}
