// Package export projects a standings.Result onto a fixed spreadsheet layout
// and encodes it. It never recomputes anything: every number comes from the
// results matrix.
package export

import (
	"errors"
	"fmt"

	"github.com/Dosada05/card-league/standings"
)

// ErrNoResults is returned when there are no teams to export.
var ErrNoResults = errors.New("no results to export")

// Table is a header plus rows of primitive values (string or int).
type Table struct {
	Header []string
	Rows   [][]any
}

// Header builds the column layout for numRounds rounds.
func Header(numRounds int) []string {
	header := make([]string, 0, 2+numRounds*4+4)
	header = append(header, "Team #", "Team Name")
	for r := 1; r <= numRounds; r++ {
		header = append(header,
			fmt.Sprintf("R%d W/L", r),
			fmt.Sprintf("R%d Points", r),
			fmt.Sprintf("R%d Hands", r),
			fmt.Sprintf("R%d Boston", r),
		)
	}
	return append(header, "Wins", "Points", "Hands", "Bostons")
}

// BuildTable lays the result out one row per team in ranking order.
func BuildTable(res *standings.Result) (Table, error) {
	if res.Empty() {
		return Table{}, ErrNoResults
	}

	table := Table{
		Header: Header(res.NumRounds),
		Rows:   make([][]any, 0, len(res.Teams)),
	}
	for _, team := range res.Teams {
		row := make([]any, 0, len(table.Header))
		row = append(row, team.TeamNumber, team.Name)
		for r := 1; r <= res.NumRounds; r++ {
			cell := res.Matrix.Cell(team.ID, r)
			row = append(row, cell.WL, cell.Points, cell.Hands, cell.Boston)
		}
		total := res.Matrix.Totals(team.ID)
		row = append(row, total.Wins, total.Points, total.Hands, total.Boston)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Records renders every cell as text, header first.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Header...))
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		records = append(records, rec)
	}
	return records
}
