package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the schema for persisted scoring runs. Idempotent.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scoring_runs (
			id TEXT PRIMARY KEY,
			run_at TIMESTAMP NOT NULL,
			source TEXT NOT NULL,
			account_count INTEGER NOT NULL,
			opportunity_count INTEGER NOT NULL,
			insight_count INTEGER NOT NULL,
			rejected_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scored_accounts (
			run_id TEXT NOT NULL REFERENCES scoring_runs(id) ON DELETE CASCADE,
			account_id TEXT NOT NULL,
			company_name TEXT NOT NULL,
			industry TEXT,
			region TEXT,
			assigned_rep TEXT,
			annual_revenue REAL NOT NULL,
			payment_timeliness REAL NOT NULL,
			communication_sentiment REAL NOT NULL,
			order_volume_trend REAL NOT NULL,
			product_adoption_rate REAL NOT NULL,
			competitive_threat TEXT,
			expansion_potential TEXT,
			health_score REAL NOT NULL,
			health_status TEXT NOT NULL,
			churn_risk_score REAL NOT NULL,
			churn_priority TEXT NOT NULL,
			PRIMARY KEY (run_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS scored_opportunities (
			run_id TEXT NOT NULL REFERENCES scoring_runs(id) ON DELETE CASCADE,
			opportunity_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			opportunity_name TEXT,
			value REAL NOT NULL,
			probability REAL NOT NULL,
			stage TEXT NOT NULL,
			expected_close_date TIMESTAMP NOT NULL,
			priority_score REAL NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY (run_id, opportunity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS insights (
			run_id TEXT NOT NULL REFERENCES scoring_runs(id) ON DELETE CASCADE,
			subject_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			priority TEXT NOT NULL,
			confidence REAL NOT NULL,
			summary TEXT,
			score_inputs TEXT NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY (run_id, subject_id, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_accounts_run ON scored_accounts(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_run ON insights(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
