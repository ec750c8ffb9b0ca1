package pool

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const unknownTeam = "UNK"

// teamAliases maps the team spellings that show up in feeds to the
// canonical DraftKings abbreviation.
var teamAliases = map[string]string{
	"JAC": "JAX",
	"WSH": "WAS",
	"LVR": "LV",
	"OAK": "LV",
	"SD":  "LAC",
	"LA":  "LAR",
	"STL": "LAR",
}

func canonTeam(team string) string {
	t := strings.ToUpper(strings.TrimSpace(team))
	if t == "" {
		return unknownTeam
	}
	if canon, ok := teamAliases[t]; ok {
		return canon
	}
	return t
}

// NormalizePosition maps feed position spellings onto the canonical set.
// DST shows up as DEF, D, or D/ST depending on the source; multi-position
// strings like "RB/FLEX" keep their base position.
func NormalizePosition(pos string) Position {
	p := strings.ToUpper(strings.TrimSpace(pos))
	if idx := strings.Index(p, "/"); idx > 0 {
		p = p[:idx]
	}
	switch p {
	case "DEF", "D":
		return DST
	}
	return Position(p)
}

// ReadProjectionsCSV reads the canonical projections table from r.
// Expected header columns: name, position (or pos), team, opponent (or
// opp), salary, proj_points. Column order is free; unknown columns are
// ignored.
func ReadProjectionsCSV(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading projections header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pick := func(names ...string) (int, bool) {
		for _, n := range names {
			if i, ok := col[n]; ok {
				return i, true
			}
		}
		return 0, false
	}

	nameIdx, ok := pick("name", "player")
	if !ok {
		return nil, fmt.Errorf("projections missing name column, found: %v", header)
	}
	posIdx, ok := pick("position", "pos")
	if !ok {
		return nil, fmt.Errorf("projections missing position column, found: %v", header)
	}
	projIdx, ok := pick("proj_points", "projection", "fpts", "points")
	if !ok {
		return nil, fmt.Errorf("projections missing proj_points column, found: %v", header)
	}
	salaryIdx, ok := pick("salary")
	if !ok {
		return nil, fmt.Errorf("projections missing salary column, found: %v", header)
	}
	teamIdx, hasTeam := pick("team", "teamabbrev", "tm")
	oppIdx, hasOpp := pick("opponent", "opp")

	var candidates []Candidate
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading projections row: %w", err)
		}

		c := Candidate{
			Name:     record[nameIdx],
			Position: record[posIdx],
		}
		if hasTeam {
			c.Team = record[teamIdx]
		}
		if hasOpp {
			c.Opponent = record[oppIdx]
		}
		// Bad numerics are carried as a parse issue so pool validation
		// rejects the row with it identified, rather than dropping it
		// here or letting a zero value pass for the real number.
		rawSalary := strings.TrimSpace(record[salaryIdx])
		if c.Salary, err = strconv.Atoi(rawSalary); err != nil {
			c.parseIssue = fmt.Sprintf("unparseable salary %q", rawSalary)
		}
		rawProj := strings.TrimSpace(record[projIdx])
		if c.ProjectedPoints, err = strconv.ParseFloat(rawProj, 64); err != nil && c.parseIssue == "" {
			c.parseIssue = fmt.Sprintf("unparseable projection %q", rawProj)
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

// LoadProjectionsFile reads the projections table from a CSV file path.
func LoadProjectionsFile(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening projections file: %w", err)
	}
	defer f.Close()
	return ReadProjectionsCSV(f)
}
