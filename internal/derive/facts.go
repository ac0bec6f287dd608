package derive

import (
	"owcs-analyzer/internal/matches"
)

// Fact is a match row extended with the facts derived for it
type Fact struct {
	matches.MatchRow
	MapWinner string   `json:"mapWinner,omitempty"`
	Won       bool     `json:"won"`
	Heroes    []string `json:"heroes"`
}

// MarkWon joins map winners onto every row of the same map. Rows of a map
// with no winner get an empty MapWinner and Won=false.
func MarkWon(rows []matches.MatchRow, winners *Winners) []Fact {
	facts := make([]Fact, len(rows))
	for i, row := range rows {
		winner, ok := winners.Of(row.Key())
		facts[i] = Fact{
			MatchRow:  row,
			MapWinner: winner,
			Won:       ok && row.Team == winner,
			Heroes:    HeroesUsed(row.StartingHero, row.Switches),
		}
	}
	return facts
}

// Derive runs the full derivation over a row set
func Derive(rows []matches.MatchRow) ([]Fact, *Winners, []MapBans) {
	winners := MapWinners(rows)
	return MarkWon(rows, winners), winners, HeroBans(rows)
}
