package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"owcs-analyzer/internal/report"
)

// SQLStore writes reports through database/sql. It backs both the local
// SQLite file and Turso, which share placeholder syntax.
type SQLStore struct {
	db   *sql.DB
	name string
	log  *zap.SugaredLogger
}

// OpenSQLite opens (or creates) a SQLite database file
func OpenSQLite(path string, log *zap.SugaredLogger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %s: %w", path, err)
	}
	// One writer at a time
	db.SetMaxOpenConns(1)

	return newSQLStore(db, "sqlite", log)
}

// OpenTurso connects to a Turso database
func OpenTurso(url, authToken string, log *zap.SugaredLogger) (*SQLStore, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Turso: %w", err)
	}
	return newSQLStore(db, "turso", log)
}

func newSQLStore(db *sql.DB, name string, log *zap.SugaredLogger) (*SQLStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", name, err)
	}
	return &SQLStore{db: db, name: name, log: log.Named("db").Named(name)}, nil
}

// Name identifies the sink in logs
func (s *SQLStore) Name() string {
	return s.name
}

// Close closes the connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// CreateTables creates the result tables if they don't exist
func (s *SQLStore) CreateTables(ctx context.Context) error {
	queries := []string{createVersionTable}
	for _, t := range tables {
		queries = append(queries, sqliteDialect.createSQL(t))
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// ClearData deletes the previous run
func (s *SQLStore) ClearData(ctx context.Context) error {
	for _, name := range TableNames() {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", name)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	return nil
}

// Write replaces the stored results with the given report
func (s *SQLStore) Write(ctx context.Context, rep *report.Report) error {
	if err := s.CreateTables(ctx); err != nil {
		return err
	}
	if err := s.ClearData(ctx); err != nil {
		return err
	}

	for _, t := range tables {
		rows := t.rows(rep)
		if err := s.insert(ctx, t, rows); err != nil {
			return fmt.Errorf("failed to insert %s: %w", t.name, err)
		}
		s.log.Debugf("Inserted %d rows into %s", len(rows), t.name)
	}

	if _, err := s.db.ExecContext(ctx, sqliteDialect.setVersionSQL(),
		rep.RunID, rep.Source, rep.GeneratedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to set data version: %w", err)
	}
	return nil
}

// insert writes rows in batches, one transaction per batch
func (s *SQLStore) insert(ctx context.Context, t table, rows [][]any) error {
	query := sqliteDialect.insertSQL(t)

	for _, batch := range batches(rows) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			tx.Rollback()
			return err
		}

		for _, row := range batch {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				stmt.Close()
				tx.Rollback()
				return err
			}
		}

		stmt.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// DataVersion returns the run id stored by the last Write
func (s *SQLStore) DataVersion(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM data_version WHERE id = 1`).Scan(&runID)
	return runID, err
}

// Count returns the number of rows in a result table
func (s *SQLStore) Count(ctx context.Context, tableName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)).Scan(&count)
	return count, err
}
