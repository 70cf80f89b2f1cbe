package config

import "github.com/hance08/tally/internal/constants"

type Config struct {
	Store      StoreConfig  `mapstructure:"store"`
	Log        LogConfig    `mapstructure:"log"`
	Output     OutputConfig `mapstructure:"output"`
	Ledger     LedgerConfig `mapstructure:"ledger"`
	ConfigPath string       `mapstructure:"-"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type LedgerConfig struct {
	// RecordFailedWithdrawals keeps withdrawals rejected for insufficient
	// funds as disputable records.
	RecordFailedWithdrawals bool `mapstructure:"record_failed_withdrawals"`
}

func NewDefault() *Config {
	return &Config{
		Store:  StoreConfig{Driver: constants.DriverMemory, Path: constants.SQLiteInMemoryPath},
		Log:    LogConfig{Level: "warn"},
		Output: OutputConfig{Format: constants.FormatCSV},
		Ledger: LedgerConfig{RecordFailedWithdrawals: true},
	}
}
