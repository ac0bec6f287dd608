package matches

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Column names in the match export header
const (
	ColMatchID      = "match_id"
	ColMapNumber    = "map_number"
	ColTeam         = "team"
	ColPlayer       = "player"
	ColResult       = "result"
	ColMap          = "map"
	ColMatchPhase   = "match_phase"
	ColStartingHero = "starting_hero"
	ColSwitches     = "switches"
	ColHeroBans     = "hero_bans"
	ColDamage       = "damage"
	ColHealing      = "healing"
	ColElim         = "elim"
)

var requiredColumns = []string{
	ColMatchID, ColMapNumber, ColTeam, ColPlayer, ColResult, ColMap, ColMatchPhase,
	ColStartingHero, ColSwitches, ColHeroBans, ColDamage, ColHealing, ColElim,
}

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyInput    = errors.New("input has no header row")
)

// Loader reads match exports into memory
type Loader struct {
	log *zap.SugaredLogger
}

// NewLoader creates a loader that reports through the given logger
func NewLoader(log *zap.SugaredLogger) *Loader {
	return &Loader{log: log.Named("loader")}
}

// LoadFile reads a CSV export from disk. Files ending in .gz are decompressed.
func (l *Loader) LoadFile(path string) ([]MatchRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	rows, err := l.Load(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.log.Infof("Loaded %d rows from %s", len(rows), path)
	return rows, nil
}

// Load parses a CSV export with a header row. Columns may appear in any order
// and extra columns are ignored.
func (l *Loader) Load(r io.Reader) ([]MatchRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []MatchRow
	line := 1
	skippedNumbers := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		field := func(col string) string {
			return strings.TrimSpace(record[index[col]])
		}
		number := func(col string) *float64 {
			v, ok := parseNumber(field(col))
			if !ok && field(col) != "" {
				skippedNumbers++
			}
			return v
		}

		rows = append(rows, MatchRow{
			Line:         line,
			MatchID:      field(ColMatchID),
			MapNumber:    field(ColMapNumber),
			Team:         field(ColTeam),
			Player:       field(ColPlayer),
			Result:       field(ColResult),
			Map:          field(ColMap),
			MatchPhase:   field(ColMatchPhase),
			StartingHero: field(ColStartingHero),
			Switches:     field(ColSwitches),
			HeroBans:     field(ColHeroBans),
			Damage:       number(ColDamage),
			Healing:      number(ColHealing),
			Elim:         number(ColElim),
		})
	}

	if skippedNumbers > 0 {
		l.log.Warnf("Treated %d unparseable scoreboard values as missing", skippedNumbers)
	}
	return rows, nil
}

// parseNumber parses an optional scoreboard value. Empty, NaN and malformed
// values are absent.
func parseNumber(s string) (*float64, bool) {
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	if math.IsNaN(v) {
		return nil, true
	}
	return &v, true
}
