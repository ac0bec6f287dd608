package report

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"owcs-analyzer/internal/derive"
	"owcs-analyzer/internal/matches"
	"owcs-analyzer/internal/quality"
	"owcs-analyzer/internal/stats"
)

// Options controls the size of the ranked views
type Options struct {
	MinHeroMaps int
	BanLimit    int
	SwitchLimit int
	PlayerLimit int
}

// DefaultOptions returns the standard report sizes
func DefaultOptions() Options {
	return Options{
		MinHeroMaps: stats.DefaultMinHeroMaps,
		BanLimit:    stats.DefaultBanLimit,
		SwitchLimit: stats.DefaultSwitchLimit,
		PlayerLimit: stats.DefaultPlayerLimit,
	}
}

// MapResult is the outcome of one map instance
type MapResult struct {
	Key    matches.MapKey `json:"key"`
	Map    string         `json:"map"`
	Phase  string         `json:"phase"`
	Winner string         `json:"winner,omitempty"`
}

// Report is everything one run derives from a match export
type Report struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Source      string    `json:"source"`

	Rows           int `json:"rows"`
	Maps           int `json:"maps"`
	MapsWithWinner int `json:"mapsWithWinner"`
	TotalBans      int `json:"totalBans"`

	MapResults        []MapResult                           `json:"mapResults"`
	TeamPhaseWinRates []stats.PhaseWinRate                  `json:"teamPhaseWinRates"`
	TeamMapWinRates   stats.MapMatrix                       `json:"teamMapWinRates"`
	BanFrequency      []stats.Count                         `json:"banFrequency"`
	HeroWinRates      []stats.HeroWinRate                   `json:"heroWinRates"`
	TopPlayers        map[matches.Metric][]stats.PlayerMean `json:"topPlayers"`
	HeroSwitches      []stats.Count                         `json:"heroSwitches"`

	Anomalies []quality.Anomaly `json:"anomalies"`
}

// Builder assembles reports
type Builder struct {
	log     *zap.SugaredLogger
	checker *quality.Checker
}

// NewBuilder creates a report builder
func NewBuilder(log *zap.SugaredLogger) *Builder {
	return &Builder{
		log:     log.Named("report"),
		checker: quality.NewChecker(log),
	}
}

// Build derives map facts from rows and computes every view
func (b *Builder) Build(source string, rows []matches.MatchRow, opts Options) *Report {
	facts, winners, bans := derive.Derive(rows)
	anomalies := b.checker.Check(rows, winners)

	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,

		Rows:           len(rows),
		MapsWithWinner: winners.Len(),
		TotalBans:      stats.TotalBans(bans),

		MapResults:        mapResults(rows, winners),
		TeamPhaseWinRates: stats.TeamPhaseWinRates(facts),
		TeamMapWinRates:   stats.TeamMapMatrix(facts),
		BanFrequency:      stats.BanFrequency(bans, opts.BanLimit),
		HeroWinRates:      stats.HeroWinRates(facts, opts.MinHeroMaps),
		TopPlayers:        make(map[matches.Metric][]stats.PlayerMean),
		HeroSwitches:      stats.HeroSwitchCounts(facts, opts.SwitchLimit),

		Anomalies: anomalies,
	}
	r.Maps = len(r.MapResults)

	for _, metric := range matches.Metrics {
		r.TopPlayers[metric] = stats.TopPlayers(facts, metric, opts.PlayerLimit)
	}

	b.log.Infof("Built report %s: %d rows, %d maps (%d with a winner), %d ban occurrences, %d anomalies",
		r.RunID, r.Rows, r.Maps, r.MapsWithWinner, r.TotalBans, len(r.Anomalies))
	return r
}

// mapResults lists each map instance once, in first-seen order
func mapResults(rows []matches.MatchRow, winners *derive.Winners) []MapResult {
	seen := make(map[matches.MapKey]bool)
	var result []MapResult
	for i := range rows {
		row := &rows[i]
		key := row.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		winner, _ := winners.Of(key)
		result = append(result, MapResult{Key: key, Map: row.Map, Phase: row.MatchPhase, Winner: winner})
	}
	return result
}

// TopBanned returns the most banned hero, or "" when there were no bans
func (r *Report) TopBanned() string {
	if len(r.BanFrequency) == 0 {
		return ""
	}
	return r.BanFrequency[0].Name
}
