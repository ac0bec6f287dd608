package stats

import (
	"cmp"
	"slices"

	"owcs-analyzer/internal/derive"
	"owcs-analyzer/internal/matches"
)

// PlayerMean is a player's average for one scoreboard metric
type PlayerMean struct {
	Player string  `json:"player"`
	Mean   float64 `json:"mean"`
	Rows   int     `json:"rows"`
}

// TopPlayers averages a metric per player over rows where it was recorded and
// returns the highest averages. Players with no recorded value are omitted.
func TopPlayers(facts []derive.Fact, metric matches.Metric, limit int) []PlayerMean {
	var order []string
	groups := make(map[string]*mean)

	for i := range facts {
		f := &facts[i]
		v := f.Value(metric)
		if v == nil || f.Player == "" {
			continue
		}
		if groups[f.Player] == nil {
			groups[f.Player] = &mean{}
			order = append(order, f.Player)
		}
		groups[f.Player].add(*v)
	}

	result := make([]PlayerMean, 0, len(order))
	for _, player := range order {
		m := groups[player]
		result = append(result, PlayerMean{Player: player, Mean: m.value(), Rows: m.n})
	}
	slices.SortStableFunc(result, func(a, b PlayerMean) int {
		return cmp.Compare(b.Mean, a.Mean)
	})
	return truncate(result, limit)
}
