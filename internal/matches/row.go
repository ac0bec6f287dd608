package matches

// Result values as written by the match export
const (
	ResultWin  = "Win"
	ResultLoss = "Loss"
)

// MatchRow is one record per (match, map, team, player)
type MatchRow struct {
	Line int `json:"line"` // 1-based line in the source file

	MatchID    string `json:"matchId"`
	MapNumber  string `json:"mapNumber"`
	Team       string `json:"team"`
	Player     string `json:"player"`
	Result     string `json:"result"`
	Map        string `json:"map"`
	MatchPhase string `json:"matchPhase"`

	// Hero columns, empty when absent
	StartingHero string `json:"startingHero,omitempty"`
	Switches     string `json:"switches,omitempty"`
	HeroBans     string `json:"heroBans,omitempty"` // same value on every row of a map

	// Scoreboard, nil when no scoreboard was recorded
	Damage  *float64 `json:"damage,omitempty"`
	Healing *float64 `json:"healing,omitempty"`
	Elim    *float64 `json:"elim,omitempty"`
}

// MapKey identifies one map instance within a match
type MapKey struct {
	MatchID   string `json:"matchId"`
	MapNumber string `json:"mapNumber"`
}

// String formats the key as "match/map" for logs
func (k MapKey) String() string {
	return k.MatchID + "/" + k.MapNumber
}

// Key returns the map instance this row belongs to
func (r *MatchRow) Key() MapKey {
	return MapKey{MatchID: r.MatchID, MapNumber: r.MapNumber}
}

// IsWin reports whether this row's team won the map
func (r *MatchRow) IsWin() bool {
	return r.Result == ResultWin
}

// Metric names a scoreboard column
type Metric string

const (
	MetricDamage  Metric = "damage"
	MetricHealing Metric = "healing"
	MetricElim    Metric = "elim"
)

// Metrics lists the scoreboard columns in report order
var Metrics = []Metric{MetricDamage, MetricHealing, MetricElim}

// Value returns the row's value for a metric, nil when absent
func (r *MatchRow) Value(m Metric) *float64 {
	switch m {
	case MetricDamage:
		return r.Damage
	case MetricHealing:
		return r.Healing
	case MetricElim:
		return r.Elim
	}
	return nil
}
