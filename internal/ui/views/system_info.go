package views

import (
	"strconv"

	"github.com/pterm/pterm"
)

type SystemInfoItem struct {
	ConfigPath              string
	StoreDriver             string
	StorePath               string
	LogLevel                string
	OutputFormat            string
	RecordFailedWithdrawals bool
}

func RenderSystemInfo(data SystemInfoItem) error {
	configPath := data.ConfigPath
	if configPath == "" {
		configPath = pterm.Gray("(None, using defaults)")
	}

	tableData := pterm.TableData{
		{"Configuration File", configPath},
		{"Store Driver", data.StoreDriver},
		{"Store Path", data.StorePath},
		{"Log Level", data.LogLevel},
		{"Output Format", data.OutputFormat},
		{"Record Failed Withdrawals", strconv.FormatBool(data.RecordFailedWithdrawals)},
	}

	return pterm.DefaultTable.WithData(tableData).Render()
}
