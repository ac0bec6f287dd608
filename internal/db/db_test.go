package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"owcs-analyzer/internal/matches"
	"owcs-analyzer/internal/report"
	"owcs-analyzer/internal/stats"
)

func sampleReport(runID string) *report.Report {
	return &report.Report{
		RunID:       runID,
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Source:      "owcs25_emea_stage2.csv",
		MapResults: []report.MapResult{
			{Key: matches.MapKey{MatchID: "5", MapNumber: "1"}, Map: "Busan", Phase: "group", Winner: "Alpha"},
			{Key: matches.MapKey{MatchID: "5", MapNumber: "2"}, Map: "Ilios", Phase: "group"},
		},
		TeamPhaseWinRates: []stats.PhaseWinRate{
			{Team: "Alpha", Phase: "group", WinRate: 1, Rows: 5},
			{Team: "Bravo", Phase: "group", WinRate: 0, Rows: 5},
		},
		TeamMapWinRates: stats.MapMatrix{
			Teams:  []string{"Alpha", "Bravo"},
			Maps:   []string{"Busan", "Ilios"},
			Values: [][]float64{{1, 0}, {0, 0}},
			Played: [][]bool{{true, false}, {true, true}},
		},
		BanFrequency: []stats.Count{{Name: "Ana", Count: 2}, {Name: "Widowmaker", Count: 1}},
		HeroWinRates: []stats.HeroWinRate{{Hero: "Tracer", WinRate: 0.55, Maps: 11}},
		TopPlayers: map[matches.Metric][]stats.PlayerMean{
			matches.MetricDamage:  {{Player: "Ace", Mean: 10000, Rows: 2}, {Player: "Bolt", Mean: 8000, Rows: 2}},
			matches.MetricHealing: {{Player: "Cure", Mean: 9000, Rows: 1}},
		},
		HeroSwitches: []stats.Count{{Name: "Genji", Count: 3}},
	}
}

func openTestSQLite(t *testing.T) *SQLStore {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "owcs.db"), zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStore_Write(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	require.NoError(t, store.Write(ctx, sampleReport("run-1")))

	want := map[string]int{
		"map_results":         2,
		"team_phase_winrates": 2,
		"team_map_winrates":   4,
		"hero_bans":           2,
		"hero_winrates":       1,
		"player_metrics":      3,
		"hero_switches":       1,
		"data_version":        1,
	}
	for name, n := range want {
		count, err := store.Count(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, n, count, name)
	}

	runID, err := store.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
}

func TestSQLStore_WriteReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	require.NoError(t, store.Write(ctx, sampleReport("run-1")))

	second := sampleReport("run-2")
	second.MapResults = second.MapResults[:1]
	require.NoError(t, store.Write(ctx, second))

	count, err := store.Count(ctx, "map_results")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	runID, err := store.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)
}

func TestSQLStore_PlayedStoredAsInt(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)
	require.NoError(t, store.Write(ctx, sampleReport("run-1")))

	var played int
	err := store.db.QueryRowContext(ctx,
		`SELECT played FROM team_map_winrates WHERE team = ? AND map = ?`, "Alpha", "Ilios").Scan(&played)
	require.NoError(t, err)
	assert.Equal(t, 0, played)
}

func TestSQLStore_LargeTableIsBatched(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	rep := sampleReport("run-1")
	rep.MapResults = nil
	for i := 0; i < 2*BatchSize+17; i++ {
		rep.MapResults = append(rep.MapResults, report.MapResult{
			Key: matches.MapKey{MatchID: fmt.Sprint(i), MapNumber: "1"},
			Map: "Busan",
		})
	}
	require.NoError(t, store.Write(ctx, rep))

	count, err := store.Count(ctx, "map_results")
	require.NoError(t, err)
	assert.Equal(t, 2*BatchSize+17, count)
}

func TestBatches(t *testing.T) {
	rows := make([][]any, 250)
	got := batches(rows)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 100)
	assert.Len(t, got[2], 50)
	assert.Empty(t, batches(nil))
}

func TestDialects(t *testing.T) {
	switches := tables[len(tables)-1]

	assert.Equal(t, "INSERT INTO hero_switches (rank, hero, switch_count) VALUES (?, ?, ?)",
		sqliteDialect.insertSQL(switches))
	assert.Equal(t, "INSERT INTO hero_switches (rank, hero, switch_count) VALUES ($1, $2, $3)",
		postgresDialect.insertSQL(switches))
	assert.Contains(t, postgresDialect.createSQL(tables[1]), "win_rate DOUBLE PRECISION NOT NULL")
	assert.Contains(t, sqliteDialect.createSQL(tables[1]), "PRIMARY KEY (team, phase)")
}

func TestTurso_Write(t *testing.T) {
	url := os.Getenv("OWCS_TEST_TURSO_URL")
	if url == "" {
		t.Skip("OWCS_TEST_TURSO_URL not set")
	}
	ctx := context.Background()

	store, err := OpenTurso(url, os.Getenv("OWCS_TEST_TURSO_TOKEN"), zap.NewNop().Sugar())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(ctx, sampleReport("turso-run")))
	runID, err := store.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "turso-run", runID)
}

func TestPostgres_Write(t *testing.T) {
	url := os.Getenv("OWCS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("OWCS_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := NewPostgres(ctx, url, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer pg.Close()

	require.NoError(t, pg.Write(ctx, sampleReport("pg-run")))
	runID, err := pg.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pg-run", runID)
}
