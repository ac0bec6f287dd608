package derive

import (
	"owcs-analyzer/internal/matches"
)

// Conflict records a second Win row for a map naming a different team
type Conflict struct {
	Key     matches.MapKey `json:"key"`
	Kept    string         `json:"kept"`
	Ignored string         `json:"ignored"`
	Line    int            `json:"line"`
}

// Winners maps each map instance to the team that won it
type Winners struct {
	byMap     map[matches.MapKey]string
	Conflicts []Conflict
}

// Of returns the winner of a map. ok is false when no Win row exists for it.
func (w *Winners) Of(key matches.MapKey) (string, bool) {
	team, ok := w.byMap[key]
	return team, ok
}

// Len returns the number of maps with a winner
func (w *Winners) Len() int {
	return len(w.byMap)
}

// MapWinners picks the first Win row per map in input order. Later Win rows
// naming another team are kept as conflicts rather than overriding it.
func MapWinners(rows []matches.MatchRow) *Winners {
	w := &Winners{byMap: make(map[matches.MapKey]string)}

	for i := range rows {
		row := &rows[i]
		if !row.IsWin() {
			continue
		}

		key := row.Key()
		kept, exists := w.byMap[key]
		if !exists {
			w.byMap[key] = row.Team
			continue
		}
		if kept != row.Team {
			w.Conflicts = append(w.Conflicts, Conflict{
				Key:     key,
				Kept:    kept,
				Ignored: row.Team,
				Line:    row.Line,
			})
		}
	}

	return w
}
