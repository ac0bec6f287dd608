package quality

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"owcs-analyzer/internal/derive"
	"owcs-analyzer/internal/matches"
)

// Kind classifies an anomaly
type Kind string

const (
	KindConflictingWinner Kind = "conflicting_winner"
	KindMissingWinner     Kind = "missing_winner"
	KindUnknownResult     Kind = "unknown_result"
	KindDuplicateRow      Kind = "possible_duplicate_row"
)

// Kinds lists every anomaly kind in reporting order
var Kinds = []Kind{KindConflictingWinner, KindMissingWinner, KindUnknownResult, KindDuplicateRow}

// Anomaly is a data-quality finding. Findings never change the aggregates.
type Anomaly struct {
	Kind   Kind           `json:"kind"`
	Key    matches.MapKey `json:"key"`
	Line   int            `json:"line,omitempty"`
	Detail string         `json:"detail"`
}

// Bloom filter sizing for duplicate row detection
const (
	expectedRows      = 100000
	falsePositiveRate = 0.001
)

// Checker inspects a row set and its derived winners for data-quality issues
type Checker struct {
	log *zap.SugaredLogger
}

// NewChecker creates a checker that logs each finding as a warning
func NewChecker(log *zap.SugaredLogger) *Checker {
	return &Checker{log: log.Named("quality")}
}

// Check returns every anomaly found, in input order per kind
func (c *Checker) Check(rows []matches.MatchRow, winners *derive.Winners) []Anomaly {
	var anomalies []Anomaly

	for _, conflict := range winners.Conflicts {
		anomalies = append(anomalies, Anomaly{
			Kind:   KindConflictingWinner,
			Key:    conflict.Key,
			Line:   conflict.Line,
			Detail: fmt.Sprintf("kept %q, ignored Win row for %q", conflict.Kept, conflict.Ignored),
		})
	}

	anomalies = append(anomalies, missingWinners(rows, winners)...)
	anomalies = append(anomalies, unknownResults(rows)...)
	anomalies = append(anomalies, duplicateRows(rows)...)

	for _, a := range anomalies {
		c.log.Warnw("Data quality issue", "kind", a.Kind, "map", a.Key.String(), "line", a.Line, "detail", a.Detail)
	}
	if len(anomalies) == 0 {
		c.log.Debug("No data quality issues found")
	}

	return anomalies
}

func missingWinners(rows []matches.MatchRow, winners *derive.Winners) []Anomaly {
	var result []Anomaly
	reported := make(map[matches.MapKey]bool)
	for i := range rows {
		key := rows[i].Key()
		if reported[key] {
			continue
		}
		if _, ok := winners.Of(key); ok {
			continue
		}
		reported[key] = true
		result = append(result, Anomaly{
			Kind:   KindMissingWinner,
			Key:    key,
			Line:   rows[i].Line,
			Detail: "no Win row for this map; all rows count as not won",
		})
	}
	return result
}

func unknownResults(rows []matches.MatchRow) []Anomaly {
	var result []Anomaly
	for i := range rows {
		r := &rows[i]
		if r.Result == matches.ResultWin || r.Result == matches.ResultLoss {
			continue
		}
		result = append(result, Anomaly{
			Kind:   KindUnknownResult,
			Key:    r.Key(),
			Line:   r.Line,
			Detail: fmt.Sprintf("result %q counts as not Win", r.Result),
		})
	}
	return result
}

// duplicateRows flags rows whose (match, map, team, player) was probably seen
// before. Bloom filter hits can be false positives, so these are warnings only.
func duplicateRows(rows []matches.MatchRow) []Anomaly {
	filter := bloom.NewWithEstimates(expectedRows, falsePositiveRate)

	var result []Anomaly
	for i := range rows {
		r := &rows[i]
		id := r.MatchID + "\x00" + r.MapNumber + "\x00" + r.Team + "\x00" + r.Player
		if filter.TestAndAddString(id) {
			result = append(result, Anomaly{
				Kind:   KindDuplicateRow,
				Key:    r.Key(),
				Line:   r.Line,
				Detail: fmt.Sprintf("player %q of %q appears more than once on this map", r.Player, r.Team),
			})
		}
	}
	return result
}

// Count returns the number of anomalies of each kind
func Count(anomalies []Anomaly) map[Kind]int {
	counts := make(map[Kind]int)
	for _, a := range anomalies {
		counts[a.Kind]++
	}
	return counts
}
