package stats

import (
	"cmp"
	"math"
	"slices"
)

// Count is a named occurrence count
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// counter tallies names and remembers first-seen order for tie breaking
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// top returns counts descending, ties in first-seen order. limit <= 0 returns all.
func (c *counter) top(limit int) []Count {
	result := make([]Count, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, Count{Name: name, Count: c.counts[name]})
	}
	slices.SortStableFunc(result, func(a, b Count) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return truncate(result, limit)
}

// mean accumulates a running average
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
