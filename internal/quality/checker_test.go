package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"owcs-analyzer/internal/derive"
	"owcs-analyzer/internal/matches"
)

func row(line int, match, mapNum, team, player, result string) matches.MatchRow {
	return matches.MatchRow{Line: line, MatchID: match, MapNumber: mapNum, Team: team, Player: player, Result: result}
}

func TestCheck_CleanInput(t *testing.T) {
	rows := []matches.MatchRow{
		row(2, "1", "1", "A", "a1", matches.ResultWin),
		row(3, "1", "1", "B", "b1", matches.ResultLoss),
	}

	anomalies := NewChecker(zap.NewNop().Sugar()).Check(rows, derive.MapWinners(rows))
	assert.Empty(t, anomalies)
}

func TestCheck_FindsEachKind(t *testing.T) {
	rows := []matches.MatchRow{
		row(2, "1", "1", "A", "a1", matches.ResultWin),
		row(3, "1", "1", "B", "b1", matches.ResultWin),
		row(4, "1", "2", "A", "a1", matches.ResultLoss),
		row(5, "1", "2", "B", "b1", "Draw"),
		row(6, "1", "1", "A", "a1", matches.ResultWin),
	}

	anomalies := NewChecker(zap.NewNop().Sugar()).Check(rows, derive.MapWinners(rows))
	counts := Count(anomalies)

	assert.Equal(t, 1, counts[KindConflictingWinner])
	assert.Equal(t, 1, counts[KindMissingWinner])
	assert.Equal(t, 1, counts[KindUnknownResult])
	assert.GreaterOrEqual(t, counts[KindDuplicateRow], 1)

	require.NotEmpty(t, anomalies)
	first := anomalies[0]
	assert.Equal(t, KindConflictingWinner, first.Kind)
	assert.Equal(t, 3, first.Line)
	assert.Contains(t, first.Detail, `kept "A"`)

	for _, a := range anomalies {
		if a.Kind == KindMissingWinner {
			assert.Equal(t, matches.MapKey{MatchID: "1", MapNumber: "2"}, a.Key)
			assert.Equal(t, 4, a.Line)
		}
	}
}
