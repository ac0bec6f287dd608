package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"owcs-analyzer/internal/report"
)

// Postgres writes reports to a Postgres database
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

// NewPostgres creates a connection pool for dbURL
func NewPostgres(ctx context.Context, dbURL string, log *zap.SugaredLogger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool, log: log.Named("db").Named("postgres")}, nil
}

// Name identifies the sink in logs
func (p *Postgres) Name() string {
	return "postgres"
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Write replaces the stored results with the given report
func (p *Postgres) Write(ctx context.Context, rep *report.Report) error {
	queries := []string{createVersionTable}
	for _, t := range tables {
		queries = append(queries, postgresDialect.createSQL(t))
	}
	for _, name := range TableNames() {
		queries = append(queries, fmt.Sprintf("DELETE FROM %s", name))
	}
	for _, query := range queries {
		if _, err := p.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	for _, t := range tables {
		rows := t.rows(rep)
		if err := p.insert(ctx, t, rows); err != nil {
			return fmt.Errorf("failed to insert %s: %w", t.name, err)
		}
		p.log.Debugf("Inserted %d rows into %s", len(rows), t.name)
	}

	if _, err := p.pool.Exec(ctx, postgresDialect.setVersionSQL(),
		rep.RunID, rep.Source, rep.GeneratedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to set data version: %w", err)
	}
	return nil
}

// insert sends each batch as one pgx.Batch inside a transaction
func (p *Postgres) insert(ctx context.Context, t table, rows [][]any) error {
	query := postgresDialect.insertSQL(t)

	for _, chunk := range batches(rows) {
		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, row := range chunk {
			batch.Queue(query, row...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			tx.Rollback(ctx)
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DataVersion returns the run id stored by the last Write
func (p *Postgres) DataVersion(ctx context.Context) (string, error) {
	var runID string
	err := p.pool.QueryRow(ctx, `SELECT run_id FROM data_version WHERE id = 1`).Scan(&runID)
	return runID, err
}
