package db

import (
	"fmt"
	"strings"

	"owcs-analyzer/internal/report"
)

// BatchSize is the number of rows inserted per transaction
const BatchSize = 100

type columnType int

const (
	typeText columnType = iota
	typeInt
	typeFloat
)

type column struct {
	name string
	typ  columnType
}

// table is one result table and the rows a report produces for it
type table struct {
	name    string
	columns []column
	key     []string
	rows    func(rep *report.Report) [][]any
}

// dialect covers the differences between the SQLite and Postgres schemas
type dialect struct {
	types       map[columnType]string
	placeholder func(n int) string
}

var (
	sqliteDialect = dialect{
		types:       map[columnType]string{typeText: "TEXT", typeInt: "INTEGER", typeFloat: "REAL"},
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = dialect{
		types:       map[columnType]string{typeText: "TEXT", typeInt: "INTEGER", typeFloat: "DOUBLE PRECISION"},
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

func (d dialect) createSQL(t table) string {
	defs := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		defs = append(defs, fmt.Sprintf("%s %s NOT NULL", c.name, d.types[c.typ]))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(t.key, ", ")))
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.name, strings.Join(defs, ",\n\t"))
}

func (d dialect) insertSQL(t table) string {
	names := make([]string, len(t.columns))
	params := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
		params[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(names, ", "), strings.Join(params, ", "))
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS data_version (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

func (d dialect) setVersionSQL() string {
	return fmt.Sprintf(`INSERT INTO data_version (id, run_id, source, updated_at) VALUES (1, %s, %s, %s)`,
		d.placeholder(1), d.placeholder(2), d.placeholder(3))
}

// tables lists every result table in write order
var tables = []table{
	{
		name: "map_results",
		columns: []column{
			{"match_id", typeText}, {"map_number", typeText}, {"map", typeText},
			{"phase", typeText}, {"winner", typeText},
		},
		key: []string{"match_id", "map_number"},
		rows: func(rep *report.Report) [][]any {
			out := make([][]any, len(rep.MapResults))
			for i, m := range rep.MapResults {
				out[i] = []any{m.Key.MatchID, m.Key.MapNumber, m.Map, m.Phase, m.Winner}
			}
			return out
		},
	},
	{
		name: "team_phase_winrates",
		columns: []column{
			{"team", typeText}, {"phase", typeText}, {"win_rate", typeFloat}, {"row_count", typeInt},
		},
		key: []string{"team", "phase"},
		rows: func(rep *report.Report) [][]any {
			out := make([][]any, len(rep.TeamPhaseWinRates))
			for i, r := range rep.TeamPhaseWinRates {
				out[i] = []any{r.Team, r.Phase, r.WinRate, r.Rows}
			}
			return out
		},
	},
	{
		name: "team_map_winrates",
		columns: []column{
			{"team", typeText}, {"map", typeText}, {"win_rate", typeFloat}, {"played", typeInt},
		},
		key: []string{"team", "map"},
		rows: func(rep *report.Report) [][]any {
			m := rep.TeamMapWinRates
			var out [][]any
			for i, team := range m.Teams {
				for j, name := range m.Maps {
					out = append(out, []any{team, name, m.Values[i][j], boolToInt(m.Played[i][j])})
				}
			}
			return out
		},
	},
	{
		name:    "hero_bans",
		columns: []column{{"rank", typeInt}, {"hero", typeText}, {"ban_count", typeInt}},
		key:     []string{"hero"},
		rows: func(rep *report.Report) [][]any {
			out := make([][]any, len(rep.BanFrequency))
			for i, c := range rep.BanFrequency {
				out[i] = []any{i + 1, c.Name, c.Count}
			}
			return out
		},
	},
	{
		name:    "hero_winrates",
		columns: []column{{"hero", typeText}, {"win_rate", typeFloat}, {"maps", typeInt}},
		key:     []string{"hero"},
		rows: func(rep *report.Report) [][]any {
			out := make([][]any, len(rep.HeroWinRates))
			for i, h := range rep.HeroWinRates {
				out[i] = []any{h.Hero, h.WinRate, h.Maps}
			}
			return out
		},
	},
	{
		name: "player_metrics",
		columns: []column{
			{"metric", typeText}, {"rank", typeInt}, {"player", typeText},
			{"mean", typeFloat}, {"row_count", typeInt},
		},
		key: []string{"metric", "player"},
		rows: func(rep *report.Report) [][]any {
			var out [][]any
			for metric, players := range rep.TopPlayers {
				for i, p := range players {
					out = append(out, []any{string(metric), i + 1, p.Player, p.Mean, p.Rows})
				}
			}
			return out
		},
	},
	{
		name:    "hero_switches",
		columns: []column{{"rank", typeInt}, {"hero", typeText}, {"switch_count", typeInt}},
		key:     []string{"hero"},
		rows: func(rep *report.Report) [][]any {
			out := make([][]any, len(rep.HeroSwitches))
			for i, c := range rep.HeroSwitches {
				out[i] = []any{i + 1, c.Name, c.Count}
			}
			return out
		},
	},
}

// TableNames lists the tables a sink writes, data_version first
func TableNames() []string {
	names := []string{"data_version"}
	for _, t := range tables {
		names = append(names, t.name)
	}
	return names
}

func batches(rows [][]any) [][][]any {
	var out [][][]any
	for i := 0; i < len(rows); i += BatchSize {
		end := min(i+BatchSize, len(rows))
		out = append(out, rows[i:end])
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
