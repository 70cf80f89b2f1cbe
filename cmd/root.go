package cmd

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/errhandler"
	"github.com/hance08/tally/internal/ui/views"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootFlags struct {
	ConfigFile string
	Summary    bool
}

func Execute(migrations fs.FS) {
	rootCmd := NewRootCmd(migrations)

	if err := rootCmd.Execute(); err != nil {
		errhandler.HandleError(err)
		os.Exit(1)
	}
}

// NewRootCmd builds the tally command: replay one event file and print the
// resulting account balances.
func NewRootCmd(migrations fs.FS) *cobra.Command {
	flags := &rootFlags{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "tally <events.csv>",
		Short: "tally replays client transactions and prints final account balances",
		Long: `tally reads a CSV stream of deposits, withdrawals, disputes, resolves and
chargebacks, applies them in order and writes one row per client account with
its available, held and total funds and whether the account is locked.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, flags.ConfigFile)
			if err != nil {
				return err
			}

			application, cleanup, err := app.NewApp(cfg, migrations)
			if err != nil {
				return err
			}
			defer cleanup()

			runner := &replayRunner{
				app:     application,
				summary: flags.Summary,
				out:     cmd.OutOrStdout(),
				errOut:  cmd.ErrOrStderr(),
			}
			return runner.Run(args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.ConfigFile, "config", "c", "", "set the config file path")
	pf.String("store", "", "store driver: memory or sqlite")
	pf.String("db", "", "sqlite database path (default in-memory)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("record-failed-withdrawals", true, "keep withdrawals rejected for insufficient funds as disputable records")
	pf.StringP("format", "f", "", "output format: csv or table")
	rootCmd.Flags().BoolVar(&flags.Summary, "summary", false, "print per event type counters to stderr")

	bindings := map[string]string{
		"store.driver":                     "store",
		"store.path":                       "db",
		"log.level":                        "log-level",
		"ledger.record_failed_withdrawals": "record-failed-withdrawals",
		"output.format":                    "format",
	}
	for key, name := range bindings {
		_ = v.BindPFlag(key, pf.Lookup(name))
	}

	rootCmd.AddCommand(NewInfoCmd(v, flags))

	return rootCmd
}

type replayRunner struct {
	app     *app.App
	summary bool
	out     io.Writer
	errOut  io.Writer
}

func (r *replayRunner) Run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open the transaction file %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := r.app.Replay(bufio.NewReader(f), r.out); err != nil {
		return err
	}

	if r.summary {
		return views.RenderRunSummary(r.errOut, r.app.Service.Ledger.Stats())
	}
	return nil
}

// loadConfig merges defaults, the optional config file, TALLY_* environment
// variables and command line flags, in increasing priority.
func loadConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	defaults := config.NewDefault()
	v.SetDefault("store.driver", defaults.Store.Driver)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("ledger.record_failed_withdrawals", defaults.Ledger.RecordFailedWithdrawals)

	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // allow using environment variables to override

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := config.NewDefault()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %v", err)
	}

	cfg.ConfigPath = v.ConfigFileUsed()

	return cfg, nil
}
