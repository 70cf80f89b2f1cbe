package views

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hance08/tally/internal/model"
	"github.com/pterm/pterm"
)

type AccountListView struct {
	w io.Writer
}

func NewAccountListView(w io.Writer) *AccountListView {
	return &AccountListView{w: w}
}

func (v *AccountListView) Render(accounts []*model.Account) error {
	headers := []string{"Client", "Available", "Held", "Total", "Locked"}
	tableData := pterm.TableData{headers}

	for _, acc := range accounts {
		locked := pterm.Green("no")
		client := strconv.FormatUint(uint64(acc.Client), 10)
		if acc.Locked { // frozen by a chargeback
			locked = pterm.Red("yes")
			client = pterm.Red(client)
		}

		held := acc.Held.String()
		if acc.Held > 0 {
			held = pterm.Yellow(held)
		}

		tableData = append(tableData, []string{
			client,
			acc.Available.String(),
			held,
			acc.Total().String(),
			locked,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithRightAlignment().WithData(tableData).Srender()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(v.w, table); err != nil {
		return err
	}

	_, err = fmt.Fprintf(v.w, "Total: %d accounts\n", len(accounts))
	return err
}
