package db

import (
	"context"

	"owcs-analyzer/internal/report"
)

// Sink stores a report somewhere outside the output directory
type Sink interface {
	Name() string
	Write(ctx context.Context, rep *report.Report) error
	Close() error
}

var (
	_ Sink = (*SQLStore)(nil)
	_ Sink = (*Postgres)(nil)
)
