package app

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/reader"
	"github.com/hance08/tally/internal/ui/views"
	"go.uber.org/zap"
)

// Replay applies every event of src in order and writes the final account
// snapshot to dst. Nothing is written when any event fails.
func (a *App) Replay(src io.Reader, dst io.Writer) error {
	start := time.Now()

	err := reader.New(src).Each(a.Service.Ledger.Process)
	if err != nil {
		return err
	}

	accounts, err := a.Service.Account.Snapshot()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch a.Config.Output.Format {
	case constants.FormatTable:
		err = views.NewAccountListView(&buf).Render(accounts)
	default:
		err = export.WriteCSV(&buf, accounts)
	}
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}

	if _, err := buf.WriteTo(dst); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	a.Logger.Info("replay finished",
		zap.Int("events", a.Service.Ledger.Stats().Total()),
		zap.Int("accounts", len(accounts)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}
