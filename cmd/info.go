package cmd

import (
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/ui"
	"github.com/hance08/tally/internal/ui/views"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type infoRunner struct {
	cfg *config.Config
}

func NewInfoCmd(v *viper.Viper, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display the resolved configuration",
		Long:  `Display the configuration tally would run with after merging the config file, environment and flags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, flags.ConfigFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runner := &infoRunner{
				cfg: cfg,
			}

			return runner.Run()
		},
	}
}

func (r *infoRunner) Run() error {
	ui.PrintL1Title("tally")

	items := views.SystemInfoItem{
		ConfigPath:              r.cfg.ConfigPath,
		StoreDriver:             r.cfg.Store.Driver,
		StorePath:               r.cfg.Store.Path,
		LogLevel:                r.cfg.Log.Level,
		OutputFormat:            r.cfg.Output.Format,
		RecordFailedWithdrawals: r.cfg.Ledger.RecordFailedWithdrawals,
	}

	return views.RenderSystemInfo(items)
}
