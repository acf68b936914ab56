package itembank

import (
	"context"
	"database/sql"
	"fmt"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// itemsSchema mirrors the spreadsheet's column layout one to one.
const itemsSchema = `
CREATE TABLE IF NOT EXISTS screening_items (
	position   INTEGER PRIMARY KEY AUTOINCREMENT,
	group_no   TEXT NOT NULL,
	age_range  TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	item_text  TEXT NOT NULL,
	item_type  TEXT NOT NULL,
	hint       TEXT NOT NULL,
	criterion  TEXT NOT NULL
)`

// SQLiteSource reads the item bank from a local SQLite database, for
// deployments that cannot reach the maintained spreadsheet at runtime.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens (and if needed initializes) the item bank
// database at dsn.
func OpenSQLiteSource(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open item bank database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(itemsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}

	return &SQLiteSource{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

// FetchAllRows returns the stored rows in insertion order, preceded by a
// synthetic header row so all sources share one contract.
func (s *SQLiteSource) FetchAllRows(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_no, age_range, item_id, item_text, item_type, hint, criterion
		FROM screening_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := [][]string{{"組別", "年齡區間", "題號", "題目", "類型", "提示", "通過標準"}}
	for rows.Next() {
		row := make([]string, columnCount)
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3], &row[4], &row[5], &row[6]); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

// Seed replaces the stored item rows with the rows from another source
// (header excluded). Used by the bank seed command to snapshot the
// spreadsheet into SQLite.
func (s *SQLiteSource) Seed(ctx context.Context, src Source) (int, error) {
	rows, err := src.FetchAllRows(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		rows = rows[1:] // drop header
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM screening_items`); err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO screening_items (group_no, age_range, item_id, item_text, item_type, hint, criterion)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, row := range rows {
		if len(row) < columnCount {
			continue // malformed rows are dropped at seed time too
		}
		if _, err := stmt.ExecContext(ctx, row[0], row[1], row[2], row[3], row[4], row[5], row[6]); err != nil {
			return 0, fmt.Errorf("insert item row: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return n, nil
}

// applyPragmas configures SQLite for read-mostly single-writer use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
