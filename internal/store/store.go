// Package store caches fetched meetup pages in SQLite so the list can be
// browsed without a connection.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/meetapp/internal/meetup"
)

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var memSeq atomic.Uint64

// Open opens or creates the cache at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	memory := path == ":memory:"
	if memory {
		// Named so that every pooled connection sees the same database.
		dsn = fmt.Sprintf("file:meetapp-%d?mode=memory&cache=shared", memSeq.Add(1))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if !memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meetups (
		id INTEGER PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		day TEXT NOT NULL,
		page INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL,
		PRIMARY KEY (day, page)
	);

	CREATE TABLE IF NOT EXISTS page_entries (
		day TEXT NOT NULL,
		page INTEGER NOT NULL,
		position INTEGER NOT NULL,
		meetup_id INTEGER NOT NULL,
		PRIMARY KEY (day, page, position)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_meetup ON page_entries(meetup_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// DayKey is the calendar day a page belongs to, in the date's own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SavePage replaces the cached contents of one page. An empty page is
// recorded too, so that ListPage can tell "no results" from "never fetched".
func (s *Store) SavePage(day time.Time, page int, records []meetup.Meetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := DayKey(day)
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM page_entries WHERE day = ? AND page = ?`, key, page); err != nil {
		return fmt.Errorf("clear page: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO pages (day, page, fetched_at) VALUES (?, ?, ?)`, key, page, now); err != nil {
		return fmt.Errorf("save page: %w", err)
	}

	for i, m := range records {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode meetup %d: %w", m.ID, err)
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meetups (id, payload, fetched_at) VALUES (?, ?, ?)`,
			int(m.ID), string(payload), now); err != nil {
			return fmt.Errorf("save meetup %d: %w", m.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO page_entries (day, page, position, meetup_id) VALUES (?, ?, ?, ?)`,
			key, page, i, int(m.ID)); err != nil {
			return fmt.Errorf("save entry: %w", err)
		}
	}
	return tx.Commit()
}

// ListPage returns a cached page in its original order. ok is false when the
// page was never saved.
func (s *Store) ListPage(day time.Time, page int) (records []meetup.Meetup, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := DayKey(day)
	var one int
	err = s.db.QueryRow(`SELECT 1 FROM pages WHERE day = ? AND page = ?`, key, page).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup page: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT m.payload FROM page_entries e
		JOIN meetups m ON m.id = e.meetup_id
		WHERE e.day = ? AND e.page = ?
		ORDER BY e.position`, key, page)
	if err != nil {
		return nil, false, fmt.Errorf("query page: %w", err)
	}
	defer rows.Close()

	records = []meetup.Meetup{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		var m meetup.Meetup
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, false, fmt.Errorf("decode cached meetup: %w", err)
		}
		records = append(records, m)
	}
	return records, true, rows.Err()
}

// Get returns one cached meetup.
func (s *Store) Get(id meetup.ID) (meetup.Meetup, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *Store) get(id meetup.ID) (meetup.Meetup, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM meetups WHERE id = ?`, int(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return meetup.Meetup{}, false, nil
	}
	if err != nil {
		return meetup.Meetup{}, false, err
	}
	var m meetup.Meetup
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return meetup.Meetup{}, false, fmt.Errorf("decode cached meetup: %w", err)
	}
	return m, true, nil
}

// MarkSubscribed records user as subscribed to a cached meetup. Unknown ids
// are ignored.
func (s *Store) MarkSubscribed(id meetup.ID, user meetup.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok, err := s.get(id)
	if err != nil || !ok {
		return err
	}
	if m.SubscribedBy(user) {
		return nil
	}
	m.Subscriptions = append(m.Subscriptions, meetup.Subscription{UserID: user})

	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE meetups SET payload = ? WHERE id = ?`, string(payload), int(id))
	return err
}

// Stats reports how much is cached.
func (s *Store) Stats() (pages, meetups int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&pages); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM meetups`).Scan(&meetups)
	return pages, meetups, err
}
