package config

import (
	"fmt"

	"github.com/hance08/tally/internal/constants"
)

// Validate reports the first unsupported setting.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case constants.DriverMemory, constants.DriverSQLite:
	default:
		return fmt.Errorf("unsupported store driver %q (want %s or %s)",
			c.Store.Driver, constants.DriverMemory, constants.DriverSQLite)
	}

	switch c.Output.Format {
	case constants.FormatCSV, constants.FormatTable:
	default:
		return fmt.Errorf("unsupported output format %q (want %s or %s)",
			c.Output.Format, constants.FormatCSV, constants.FormatTable)
	}

	return nil
}
