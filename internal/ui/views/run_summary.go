package views

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hance08/tally/internal/service"
	"github.com/hance08/tally/internal/ui"
	"github.com/pterm/pterm"
)

// RenderRunSummary writes per event type counters of a finished run.
func RenderRunSummary(w io.Writer, stats service.Stats) error {
	types := make([]string, 0, len(stats))
	for typ := range stats {
		types = append(types, typ)
	}
	sort.Strings(types)

	tableData := pterm.TableData{{"Event", "Applied", "Ignored", "Reasons"}}
	for _, typ := range types {
		es := stats[typ]

		reasons := make([]string, 0, len(es.Reasons))
		for r, n := range es.Reasons {
			reasons = append(reasons, fmt.Sprintf("%s: %d", r, n))
		}
		sort.Strings(reasons)

		tableData = append(tableData, []string{
			typ,
			strconv.Itoa(es.Applied),
			strconv.Itoa(es.Ignored),
			strings.Join(reasons, ", "),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n%s\nProcessed %d events\n", ui.SprintL2Title("Run Summary"), table, stats.Total())
	return err
}
