package derive

import (
	"slices"
	"strings"

	"owcs-analyzer/internal/matches"
)

const (
	// Delimiter separates heroes in the switches and hero_bans columns
	Delimiter = ","
	// NoHero is the placeholder the export writes for an empty hero slot
	NoHero = "None"
)

// HeroesUsed returns the distinct heroes a player was on during a map, from the
// starting hero and any switches, sorted by name
func HeroesUsed(startingHero, switches string) []string {
	joined := startingHero + Delimiter + switches

	seen := make(map[string]bool)
	var heroes []string
	for _, token := range strings.Split(joined, Delimiter) {
		hero := strings.TrimSpace(token)
		if hero == "" || hero == NoHero || seen[hero] {
			continue
		}
		seen[hero] = true
		heroes = append(heroes, hero)
	}

	slices.Sort(heroes)
	return heroes
}

// MapBans is the ban list of one map instance
type MapBans struct {
	Key    matches.MapKey `json:"key"`
	Heroes []string       `json:"heroes"`
}

type banKey struct {
	key  matches.MapKey
	bans string
}

// HeroBans collects ban lists once per map. Rows are deduplicated on
// (match_id, map_number, hero_bans) in first-seen order; rows without bans are
// dropped. Heroes keep their listed order and are not deduplicated.
func HeroBans(rows []matches.MatchRow) []MapBans {
	seen := make(map[banKey]bool)
	var result []MapBans

	for i := range rows {
		row := &rows[i]
		if row.HeroBans == "" {
			continue
		}

		k := banKey{key: row.Key(), bans: row.HeroBans}
		if seen[k] {
			continue
		}
		seen[k] = true

		var heroes []string
		for _, token := range strings.Split(row.HeroBans, Delimiter) {
			if hero := strings.TrimSpace(token); hero != "" {
				heroes = append(heroes, hero)
			}
		}
		result = append(result, MapBans{Key: k.key, Heroes: heroes})
	}

	return result
}
