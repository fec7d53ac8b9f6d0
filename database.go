package arena

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// MatchRow is a persisted match summary
type MatchRow struct {
	ID         string
	Mode       string
	Seed       int64
	Width      float64
	Height     float64
	StartedAt  time.Time
	EndedAt    sql.NullTime
	Duration   float64
	WinnerTeam TeamID
	WinnerID   EntityID
	RedScore   int
	BlueScore  int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	// foreign_keys is per connection, so it goes in the DSN for every pooled one
	conn, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		seed INTEGER NOT NULL DEFAULT 0,
		width REAL NOT NULL DEFAULT 0,
		height REAL NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		duration REAL NOT NULL DEFAULT 0,
		winner_team INTEGER NOT NULL DEFAULT 0,
		winner_id INTEGER NOT NULL DEFAULT 0,
		red_score INTEGER NOT NULL DEFAULT 0,
		blue_score INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS match_events (
		id TEXT PRIMARY KEY,
		match_id TEXT NOT NULL REFERENCES matches(id),
		event_type TEXT NOT NULL,
		tick INTEGER NOT NULL,
		actor INTEGER NOT NULL DEFAULT 0,
		target INTEGER NOT NULL DEFAULT 0,
		team INTEGER NOT NULL DEFAULT 0,
		value INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_events_match ON match_events(match_id, event_type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateMatch records the start of a match
func (db *DB) CreateMatch(id string, cfg MatchConfig) error {
	_, err := db.conn.Exec(
		"INSERT INTO matches (id, mode, seed, width, height, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, cfg.Mode.String(), cfg.Seed, cfg.WorldWidth, cfg.WorldHeight, time.Now().UTC(),
	)
	return err
}

// FinishMatch records the final clock and score of a match
func (db *DB) FinishMatch(id string, ms MatchState) error {
	res, err := db.conn.Exec(`
		UPDATE matches SET
			ended_at = ?,
			duration = ?,
			winner_team = ?,
			winner_id = ?,
			red_score = ?,
			blue_score = ?
		WHERE id = ?`,
		time.Now().UTC(), ms.Elapsed, int(ms.Winner), int64(ms.WinnerID),
		ms.Teams[TeamRed], ms.Teams[TeamBlue], id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetMatch returns a match summary, or nil if unknown
func (db *DB) GetMatch(id string) (*MatchRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, mode, seed, width, height, started_at, ended_at, duration,
			winner_team, winner_id, red_score, blue_score
		FROM matches WHERE id = ?`, id)
	m := &MatchRow{}
	err := row.Scan(&m.ID, &m.Mode, &m.Seed, &m.Width, &m.Height, &m.StartedAt, &m.EndedAt,
		&m.Duration, &m.WinnerTeam, &m.WinnerID, &m.RedScore, &m.BlueScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// InsertEvents writes a batch of events in one transaction
func (db *DB) InsertEvents(events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO match_events
		(id, match_id, event_type, tick, actor, target, team, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.Exec(ev.ID.String(), ev.Match, string(ev.Type), int64(ev.Tick),
			int64(ev.Actor), int64(ev.Target), int(ev.Team), ev.Value, ev.Time.UTC())
		if err != nil {
			return fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
	}
	return tx.Commit()
}

// EventCounts returns how many events of each type a match produced
func (db *DB) EventCounts(matchID string) (map[EventType]int, error) {
	rows, err := db.conn.Query(
		"SELECT event_type, COUNT(*) FROM match_events WHERE match_id = ? GROUP BY event_type",
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[EventType(typ)] = n
	}
	return counts, rows.Err()
}

// MatchEvents returns a match's events in creation order
func (db *DB) MatchEvents(matchID string) ([]Event, error) {
	rows, err := db.conn.Query(`
		SELECT id, match_id, event_type, tick, actor, target, team, value, created_at
		FROM match_events WHERE match_id = ? ORDER BY id`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var (
			id, typ       string
			tick          int64
			actor, target int64
			ev            Event
		)
		if err := rows.Scan(&id, &ev.Match, &typ, &tick, &actor, &target, &ev.Team, &ev.Value, &ev.Time); err != nil {
			return nil, err
		}
		if ev.ID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("event id %q: %w", id, err)
		}
		ev.Type = EventType(typ)
		ev.Tick = uint64(tick)
		ev.Actor = EntityID(actor)
		ev.Target = EntityID(target)
		result = append(result, ev)
	}
	return result, rows.Err()
}

// GetSetting returns a setting value, or "" if unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
