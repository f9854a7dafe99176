// Package journal records service state transitions observed by the poller
// in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thobiasn/monui/internal/protocol"
)

// currentSchemaVersion is bumped when the schema changes in a way that
// needs a data migration.
const currentSchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	host      TEXT    NOT NULL,
	component TEXT    NOT NULL,
	service   TEXT    NOT NULL,
	state     TEXT    NOT NULL,
	output    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_svc ON transitions(host, component, service, timestamp);
CREATE INDEX IF NOT EXISTS idx_transitions_ts ON transitions(timestamp);
`

// Transition is a recorded change of a service's state.
type Transition struct {
	ID        int64
	Timestamp int64 // unix seconds
	Service   string
	State     string
	Output    string
}

// Journal is the SQLite-backed transition log.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal at path with WAL mode.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// The poller and the history queries share one connection; SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA cache_size = -2000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set cache_size: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := os.Chmod(path, 0o600); err != nil {
		slog.Warn("failed to set journal file permissions", "error", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}
	if _, err := j.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Record compares a snapshot against the last recorded state of each
// service in the scope and appends a row for every service whose state
// changed (or that was never seen). It returns the number of rows written.
func (j *Journal) Record(ctx context.Context, scope protocol.Scope, services []protocol.ServiceStatus, at time.Time) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	last, err := lastStates(ctx, tx, scope)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transitions (timestamp, host, component, service, state, output) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := at.Unix()
	written := 0
	for _, s := range services {
		if prev, ok := last[s.Service]; ok && prev == s.State {
			continue
		}
		if _, err := stmt.ExecContext(ctx, ts, scope.Host, scope.Component, s.Service, s.State, s.Output); err != nil {
			return 0, fmt.Errorf("insert transition: %w", err)
		}
		last[s.Service] = s.State
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// lastStates returns the most recent recorded state per service of a scope.
func lastStates(ctx context.Context, tx *sql.Tx, scope protocol.Scope) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT t.service, t.state FROM transitions t
		JOIN (
			SELECT service, MAX(id) AS id FROM transitions
			WHERE host = ? AND component = ?
			GROUP BY service
		) latest ON latest.id = t.id`,
		scope.Host, scope.Component)
	if err != nil {
		return nil, fmt.Errorf("query last states: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var svc, state string
		if err := rows.Scan(&svc, &state); err != nil {
			return nil, fmt.Errorf("scan last state: %w", err)
		}
		out[svc] = state
	}
	return out, rows.Err()
}

// History returns up to limit transitions of one service, newest first.
func (j *Journal) History(ctx context.Context, scope protocol.Scope, service string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, timestamp, service, state, output FROM transitions
		WHERE host = ? AND component = ? AND service = ?
		ORDER BY id DESC LIMIT ?`,
		scope.Host, scope.Component, service, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Service, &t.State, &t.Output); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Prune deletes transitions older than the cutoff, keeping the newest row
// of every service so a later snapshot is still compared against it.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM transitions
		WHERE timestamp < ?
		AND id NOT IN (
			SELECT MAX(id) FROM transitions GROUP BY host, component, service
		)`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}
