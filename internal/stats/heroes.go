package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"owcs-analyzer/internal/derive"
)

// Report defaults
const (
	DefaultBanLimit    = 20
	DefaultSwitchLimit = 20
	DefaultMinHeroMaps = 10
	DefaultPlayerLimit = 15
)

// BanFrequency counts how often each hero was banned across map instances.
// limit <= 0 returns every hero.
func BanFrequency(bans []derive.MapBans, limit int) []Count {
	c := newCounter()
	for _, mb := range bans {
		for _, hero := range mb.Heroes {
			c.add(hero)
		}
	}
	return c.top(limit)
}

// TotalBans returns the number of (hero, map instance) ban occurrences
func TotalBans(bans []derive.MapBans) int {
	return lo.SumBy(bans, func(mb derive.MapBans) int { return len(mb.Heroes) })
}

// HeroWinRate is the win rate of maps where a hero was played
type HeroWinRate struct {
	Hero    string  `json:"hero"`
	WinRate float64 `json:"winRate"`
	Maps    int     `json:"maps"`
}

type heroUsage struct {
	matchID, mapNumber, player, hero, result string
}

// HeroWinRates computes the share of Win results over distinct
// (match, map, player, hero, result) usages. Only heroes with strictly more
// than minMaps usages are returned, highest win rate first.
func HeroWinRates(facts []derive.Fact, minMaps int) []HeroWinRate {
	seen := make(map[heroUsage]bool)
	var order []string
	groups := make(map[string]*mean)

	for _, f := range facts {
		for _, hero := range f.Heroes {
			u := heroUsage{f.MatchID, f.MapNumber, f.Player, hero, f.Result}
			if seen[u] {
				continue
			}
			seen[u] = true

			if groups[hero] == nil {
				groups[hero] = &mean{}
				order = append(order, hero)
			}
			groups[hero].add(boolValue(f.IsWin()))
		}
	}

	var result []HeroWinRate
	for _, hero := range order {
		m := groups[hero]
		if m.n <= minMaps {
			continue
		}
		result = append(result, HeroWinRate{Hero: hero, WinRate: m.value(), Maps: m.n})
	}
	slices.SortStableFunc(result, func(a, b HeroWinRate) int {
		return cmp.Compare(b.WinRate, a.WinRate)
	})
	return result
}

// HeroSwitchCounts counts the rows whose hero set contains each hero
func HeroSwitchCounts(facts []derive.Fact, limit int) []Count {
	c := newCounter()
	for _, f := range facts {
		for _, hero := range f.Heroes {
			c.add(hero)
		}
	}
	return c.top(limit)
}
