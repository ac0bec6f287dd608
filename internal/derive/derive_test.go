package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owcs-analyzer/internal/matches"
)

func row(match, mapNum, team, player, result string) matches.MatchRow {
	return matches.MatchRow{MatchID: match, MapNumber: mapNum, Team: team, Player: player, Result: result}
}

func TestMarkWon_OneWinnerPerMap(t *testing.T) {
	rows := []matches.MatchRow{
		row("1", "1", "A", "a1", matches.ResultWin),
		row("1", "1", "A", "a2", matches.ResultWin),
		row("1", "1", "B", "b1", matches.ResultLoss),
		row("1", "2", "A", "a1", matches.ResultLoss),
		row("1", "2", "B", "b1", matches.ResultWin),
	}

	facts, winners, _ := Derive(rows)
	require.Len(t, facts, len(rows))
	assert.Empty(t, winners.Conflicts)
	assert.Equal(t, 2, winners.Len())

	wonTeams := map[matches.MapKey]map[string]bool{}
	for _, f := range facts {
		assert.Equal(t, f.Won, f.Team == f.MapWinner)
		if f.Won {
			if wonTeams[f.Key()] == nil {
				wonTeams[f.Key()] = map[string]bool{}
			}
			wonTeams[f.Key()][f.Team] = true
		}
	}
	for key, teams := range wonTeams {
		assert.Len(t, teams, 1, "map %s", key)
	}

	assert.True(t, facts[0].Won)
	assert.False(t, facts[2].Won)
	assert.False(t, facts[3].Won)
	assert.True(t, facts[4].Won)
}

func TestMarkWon_NoWinnerIsLeftJoin(t *testing.T) {
	rows := []matches.MatchRow{
		row("2", "1", "A", "a1", matches.ResultLoss),
		row("2", "1", "B", "b1", matches.ResultLoss),
	}

	facts, winners, _ := Derive(rows)
	_, ok := winners.Of(rows[0].Key())
	assert.False(t, ok)
	for _, f := range facts {
		assert.Empty(t, f.MapWinner)
		assert.False(t, f.Won)
	}
}

func TestMapWinners_ConflictKeepsFirst(t *testing.T) {
	rows := []matches.MatchRow{
		row("3", "1", "A", "a1", matches.ResultWin),
		row("3", "1", "B", "b1", matches.ResultWin),
	}
	rows[1].Line = 7

	winners := MapWinners(rows)
	team, ok := winners.Of(rows[0].Key())
	require.True(t, ok)
	assert.Equal(t, "A", team)
	require.Len(t, winners.Conflicts, 1)
	assert.Equal(t, Conflict{Key: rows[0].Key(), Kept: "A", Ignored: "B", Line: 7}, winners.Conflicts[0])
}

func TestHeroesUsed(t *testing.T) {
	tests := []struct {
		name     string
		starting string
		switches string
		want     []string
	}{
		{"starting and switch with placeholder", "Tracer", "Genji, None", []string{"Genji", "Tracer"}},
		{"switch back to starting hero", "Ana", "Kiriko, Ana", []string{"Ana", "Kiriko"}},
		{"all absent", "", "", nil},
		{"placeholder starting hero", "None", "Sojourn", []string{"Sojourn"}},
		{"placeholder is case sensitive", "none", "", []string{"none"}},
		{"whitespace tokens", " Mercy ", " , ,Lucio", []string{"Lucio", "Mercy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeroesUsed(tt.starting, tt.switches))
		})
	}
}

func TestHeroBans_DedupPerMap(t *testing.T) {
	a := row("5", "2", "A", "a1", matches.ResultWin)
	a.HeroBans = "Ana,Widowmaker"
	b := row("5", "2", "B", "b1", matches.ResultLoss)
	b.HeroBans = "Ana,Widowmaker"
	c := row("5", "3", "A", "a1", matches.ResultWin)
	c.HeroBans = "Ana, Mauga ,"
	d := row("5", "4", "A", "a1", matches.ResultWin)

	bans := HeroBans([]matches.MatchRow{a, b, c, d})
	require.Len(t, bans, 2)
	assert.Equal(t, matches.MapKey{MatchID: "5", MapNumber: "2"}, bans[0].Key)
	assert.Equal(t, []string{"Ana", "Widowmaker"}, bans[0].Heroes)
	assert.Equal(t, []string{"Ana", "Mauga"}, bans[1].Heroes)
}

func TestHeroBans_KeepsRepeatedHero(t *testing.T) {
	r := row("1", "1", "A", "a1", matches.ResultWin)
	r.HeroBans = "Ana,Ana"

	bans := HeroBans([]matches.MatchRow{r})
	require.Len(t, bans, 1)
	assert.Equal(t, []string{"Ana", "Ana"}, bans[0].Heroes)
}
