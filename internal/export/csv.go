// Package export writes lineups and portfolios to CSV in the layout
// DFS upload tools and spreadsheet reviews expect.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
)

var lineupHeader = []string{"slot", "name", "position", "team", "opponent", "salary", "proj_points"}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func assignmentRow(a optimizer.SlotAssignment) []string {
	return []string{
		a.Slot,
		a.Player.Name,
		string(a.Player.Position),
		a.Player.Team,
		a.Player.Opponent,
		strconv.Itoa(a.Player.Salary),
		formatPoints(a.Player.ProjectedPoints),
	}
}

// WriteLineup writes one lineup as a header plus nine slot rows.
func WriteLineup(w io.Writer, lineup *optimizer.Lineup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lineupHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range lineup.Assignments {
		if err := cw.Write(assignmentRow(a)); err != nil {
			return fmt.Errorf("write slot %s: %w", a.Slot, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePortfolio writes every lineup in long format: a leading lineup
// column, nine slot rows per lineup, then one TOTAL row carrying the
// lineup's salary and base-projection sums.
func WritePortfolio(w io.Writer, p *optimizer.Portfolio) error {
	cw := csv.NewWriter(w)
	header := append([]string{"lineup"}, lineupHeader...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, lineup := range p.Lineups {
		idx := strconv.Itoa(lineup.Index)
		for _, a := range lineup.Assignments {
			row := append([]string{idx}, assignmentRow(a)...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write lineup %d slot %s: %w", lineup.Index, a.Slot, err)
			}
		}
		total := []string{
			idx, "TOTAL", "", "", "", "",
			strconv.Itoa(lineup.TotalSalary),
			formatPoints(lineup.TotalProjected),
		}
		if err := cw.Write(total); err != nil {
			return fmt.Errorf("write lineup %d total: %w", lineup.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePortfolioFile writes the portfolio CSV to a path.
func WritePortfolioFile(path string, p *optimizer.Portfolio) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePortfolio(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
