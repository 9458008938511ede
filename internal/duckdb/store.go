// Package duckdb exports canonical tables, merged haplotype calls and filter
// reports of a run into a DuckDB database for ad-hoc querying.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for run exports.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, or "" for an in-memory database.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP,
		version VARCHAR,
		precedence VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS transcripts (
		run_id VARCHAR,
		assembly VARCHAR,
		stage VARCHAR,
		transcript_id VARCHAR,
		gene_id VARCHAR,
		reference_transcript VARCHAR,
		reference_gene VARCHAR,
		orthology_class VARCHAR,
		orthology_relationship VARCHAR,
		orthology_score DOUBLE,
		paralog_score DOUBLE,
		isoform_group VARCHAR,
		fragments INTEGER,
		PRIMARY KEY (run_id, assembly, stage, transcript_id)
	)`,
	`CREATE TABLE IF NOT EXISTS merged_genes (
		run_id VARCHAR,
		gene_id VARCHAR,
		orthology_class VARCHAR,
		assembly VARCHAR,
		per_assembly VARCHAR,
		PRIMARY KEY (run_id, gene_id)
	)`,
	`CREATE TABLE IF NOT EXISTS discards (
		run_id VARCHAR,
		assembly VARCHAR,
		position INTEGER,
		stage VARCHAR,
		removed BIGINT,
		PRIMARY KEY (run_id, assembly, stage)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// appendRows batch-inserts into table using the Appender API.
func (s *Store) appendRows(table string, fn func(a *goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}
