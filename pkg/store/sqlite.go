package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists each named dataset as a table with the dataset's
// exact column set, all TEXT. Write clears the table and reinserts every
// row, matching the clear-and-rewrite contract of the Store interface.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures every
// known dataset has its table.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	logrus.WithField("path", dataSourceName).Info("dataset store opened")
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	for name, cols := range datasetColumns {
		defs := make([]string, len(cols))
		for i, col := range cols {
			defs[i] = fmt.Sprintf("%q TEXT NOT NULL DEFAULT ''", col)
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s);", name, strings.Join(defs, ", "))
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}
	return nil
}

// Read returns the full snapshot of a dataset in insertion order.
func (s *SQLiteStore) Read(name string) ([]Record, error) {
	cols, ok := DatasetColumns(name)
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", name)
	}

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf("%q", col)
	}
	query := fmt.Sprintf("SELECT %s FROM %q ORDER BY rowid", strings.Join(quoted, ", "), name)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}
	defer rows.Close()

	records := []Record{}
	values := make([]string, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for %s: %w", name, err)
	}
	return records, nil
}

// Write replaces the dataset wholesale: delete every row, reinsert the
// given records in order. The transaction covers a single dataset only.
func (s *SQLiteStore) Write(name string, records []Record) error {
	cols, ok := DatasetColumns(name)
	if !ok {
		return fmt.Errorf("unknown dataset %q", name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %q", name)); err != nil {
		return fmt.Errorf("failed to clear dataset %s: %w", name, err)
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf("%q", col)
		placeholders[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %q (%s) VALUES (%s)",
		name, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			args[i] = rec[col]
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row into %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
