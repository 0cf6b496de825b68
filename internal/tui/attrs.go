package tui

import (
	"strconv"

	table "github.com/charmbracelet/bubbles/table"

	"incomedash/internal/data"
	"incomedash/internal/scale"
)

func newCityTable() table.Model {
	t := table.New(table.WithFocused(true))
	t.SetHeight(12)
	return t
}

// cityColumns sizes the city column to the longest name, capped like the
// other columns.
func cityColumns(rows []table.Row) []table.Column {
	const maxColW = 24
	w := len("City") + 2
	for _, r := range rows {
		w = max(w, min(maxColW, len(r[1])+2))
	}
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "City", Width: w},
		{Title: "Mean Income", Width: 14},
	}
}

// cityRows lists a state's cities in rank order.
func cityRows(st data.StateIncome) []table.Row {
	ranked := data.TopN(st.Cities, len(st.Cities))
	rows := make([]table.Row, 0, len(ranked))
	for i, c := range ranked {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), c.Name, scale.FormatMoney(c.Mean)})
	}
	return rows
}

// setCityTable replaces the table contents with the cities of st.
func setCityTable(t *table.Model, st data.StateIncome) {
	rows := cityRows(st)
	// Avoid transient mismatch: clear rows, set columns, then set rows
	t.SetRows(nil)
	t.SetColumns(cityColumns(rows))
	t.SetRows(rows)
	t.GotoTop()
}

func tableWidth(t table.Model) int {
	w := 0
	for _, c := range t.Columns() {
		w += c.Width + 2
	}
	return w
}
