package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/powerline-core/internal/engine"
	"github.com/nerrad567/powerline-core/internal/x10"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Entry is one recorded state change.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Address is the device address in textual form, e.g. "A5".
	Address string `json:"address"`

	// On is the recorded power state.
	On bool `json:"on"`

	// Level is the recorded brightness (0-100).
	Level int `json:"level"`

	// Source identifies how the change was observed (powerline, mqtt).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes the state_history table.
//
// All methods are safe for concurrent use; the underlying connection
// serializes writers.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open connection whose schema has
// been migrated.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordStateChange inserts one history row for a change event.
func (s *Store) RecordStateChange(ctx context.Context, change engine.StateChange) error {
	if !change.Address.IsValid() || change.Address.IsHouse() {
		return fmt.Errorf("recording state change: device address required, got %q", change.Address.String())
	}

	powered := 0
	if change.State.On {
		powered = 1
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO state_history (address, powered, level, source) VALUES (?, ?, ?, ?)",
		change.Address.String(),
		powered,
		change.State.Level,
		change.Source,
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}
	return nil
}

// History returns recent entries for an address, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - addr: Device address
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Entries ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (s *Store) History(ctx context.Context, addr x10.Address, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, address, powered, level, source, created_at
		 FROM state_history
		 WHERE address = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		addr.String(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}
	return entries, nil
}

// LatestStates returns the newest recorded state per address, the
// snapshot used to restore the engine at startup.
func (s *Store) LatestStates(ctx context.Context) (map[x10.Address]engine.State, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT address, powered, level
		 FROM state_history
		 WHERE id IN (
		     SELECT MAX(id) FROM state_history GROUP BY address
		 )`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying latest states: %w", err)
	}
	defer rows.Close()

	states := make(map[x10.Address]engine.State)
	for rows.Next() {
		var addrText string
		var powered, level int
		if err := rows.Scan(&addrText, &powered, &level); err != nil {
			return nil, fmt.Errorf("scanning latest state: %w", err)
		}

		addr, err := x10.ParseAddress(addrText)
		if err != nil {
			// Rows written by an incompatible schema are skipped, not
			// fatal: a partial restore beats none.
			continue
		}
		states[addr] = engine.State{On: powered != 0, Level: level}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating latest states: %w", err)
	}
	return states, nil
}

// Prune deletes entries older than the retention window. A
// non-positive retention disables pruning.
//
// Returns the number of rows deleted.
func (s *Store) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM state_history WHERE created_at < ?",
		cutoff.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning state history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return deleted, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var powered int
	var createdAt string

	if err := rows.Scan(&entry.ID, &entry.Address, &powered, &entry.Level, &entry.Source, &createdAt); err != nil {
		return Entry{}, fmt.Errorf("scanning state history: %w", err)
	}
	entry.On = powered != 0

	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return Entry{}, err
	}
	entry.CreatedAt = ts
	return entry, nil
}

// parseTimestamp accepts the formats SQLite produces for created_at.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05.999Z",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing state history timestamp %q", s)
}
