package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hance08/tally/internal/model"
)

var header = []string{"client", "available", "held", "total", "locked"}

// WriteCSV renders the account snapshot, one row per account.
func WriteCSV(w io.Writer, accounts []*model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, acc := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acc.Client), 10),
			acc.Available.String(),
			acc.Held.String(),
			acc.Total().String(),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write account %d: %w", acc.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
