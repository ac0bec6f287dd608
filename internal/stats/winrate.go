package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"owcs-analyzer/internal/derive"
)

// PhaseWinRate is a team's map win rate within one match phase
type PhaseWinRate struct {
	Team    string  `json:"team"`
	Phase   string  `json:"phase"`
	WinRate float64 `json:"winRate"`
	Rows    int     `json:"rows"`
}

type teamPhase struct {
	team, phase string
}

// TeamPhaseWinRates averages won per (team, match_phase), sorted by team then
// phase. Rows missing either key are left out.
func TeamPhaseWinRates(facts []derive.Fact) []PhaseWinRate {
	groups := make(map[teamPhase]*mean)
	for _, f := range facts {
		if f.Team == "" || f.MatchPhase == "" {
			continue
		}
		k := teamPhase{team: f.Team, phase: f.MatchPhase}
		if groups[k] == nil {
			groups[k] = &mean{}
		}
		groups[k].add(boolValue(f.Won))
	}

	result := lo.MapToSlice(groups, func(k teamPhase, m *mean) PhaseWinRate {
		return PhaseWinRate{Team: k.team, Phase: k.phase, WinRate: m.value(), Rows: m.n}
	})
	slices.SortFunc(result, func(a, b PhaseWinRate) int {
		return cmp.Or(cmp.Compare(a.Team, b.Team), cmp.Compare(a.Phase, b.Phase))
	})
	return result
}

// Phases returns the distinct phases in a win rate slice, sorted
func Phases(rates []PhaseWinRate) []string {
	phases := lo.Uniq(lo.Map(rates, func(r PhaseWinRate, _ int) string { return r.Phase }))
	slices.Sort(phases)
	return phases
}

// MapMatrix holds team win rates per map. Values[i][j] is Teams[i] on Maps[j],
// rounded to two decimals; pairs never played are 0 with Played[i][j] false.
type MapMatrix struct {
	Teams  []string    `json:"teams"`
	Maps   []string    `json:"maps"`
	Values [][]float64 `json:"values"`
	Played [][]bool    `json:"played"`
}

// TeamMapMatrix averages won per (team, map) into a dense matrix
func TeamMapMatrix(facts []derive.Fact) MapMatrix {
	valid := lo.Filter(facts, func(f derive.Fact, _ int) bool {
		return f.Team != "" && f.Map != ""
	})

	teams := lo.Uniq(lo.Map(valid, func(f derive.Fact, _ int) string { return f.Team }))
	maps := lo.Uniq(lo.Map(valid, func(f derive.Fact, _ int) string { return f.Map }))
	slices.Sort(teams)
	slices.Sort(maps)

	teamIdx := make(map[string]int, len(teams))
	for i, t := range teams {
		teamIdx[t] = i
	}
	mapIdx := make(map[string]int, len(maps))
	for j, m := range maps {
		mapIdx[m] = j
	}

	cells := make([][]mean, len(teams))
	for i := range cells {
		cells[i] = make([]mean, len(maps))
	}
	for _, f := range valid {
		cells[teamIdx[f.Team]][mapIdx[f.Map]].add(boolValue(f.Won))
	}

	matrix := MapMatrix{
		Teams:  teams,
		Maps:   maps,
		Values: make([][]float64, len(teams)),
		Played: make([][]bool, len(teams)),
	}
	for i := range teams {
		matrix.Values[i] = make([]float64, len(maps))
		matrix.Played[i] = make([]bool, len(maps))
		for j := range maps {
			c := cells[i][j]
			matrix.Played[i][j] = c.n > 0
			matrix.Values[i][j] = round2(c.value())
		}
	}
	return matrix
}
