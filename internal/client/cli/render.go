package cli

import (
	"context"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/fleetadmin/internal/client/navigation"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

// maxCell bounds the width of a table cell.
const maxCell = 40

func (a *App) renderTable(columns []string, rows [][]string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	tw.Write([]byte(strings.Join(columns, "\t") + "\n"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = common.Truncate(c, maxCell)
		}
		tw.Write([]byte(strings.Join(cells, "\t") + "\n"))
	}
	tw.Flush()
}

// Menu prints the menu entries the current session may open, with the
// command that opens each one.
func (a *App) Menu(ctx context.Context) error {
	items := navigation.Visible(navigation.Menu, a.session.Status().Permissions)
	a.printItems(items, 0)
	return nil
}

func (a *App) printItems(items []navigation.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, it := range items {
		if it.Route == "" {
			a.printf("%s%s\n", indent, it.Title)
			a.printItems(it.Children, depth+1)
			continue
		}
		a.printf("%s%s  (%s)\n", indent, it.Title, it.Route)
	}
}
