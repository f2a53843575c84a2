package profile

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store with SQLite-backed persistence. It delegates
// lookups to an embedded MemStore and persists profiles and runs to SQLite
// with write-through semantics; the full documents are stored as JSON so
// added profile fields need no schema change.
type SQLiteStore struct {
	inner *MemStore
	db    *sqlx.DB
	mu    sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{inner: NewMemStore(), db: db}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) loadAll() error {
	rows, err := s.db.Query("SELECT document FROM profiles")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return err
		}
		var p PricingProfile
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			continue
		}
		s.inner.mu.Lock()
		s.inner.profiles[p.Name] = p
		s.inner.mu.Unlock()
	}
	if err := rows.Err(); err != nil {
		return err
	}

	runRows, err := s.db.Query("SELECT document FROM runs ORDER BY created_at, id")
	if err != nil {
		return err
	}
	defer runRows.Close()
	for runRows.Next() {
		var doc string
		if err := runRows.Scan(&doc); err != nil {
			return err
		}
		var r Run
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			continue
		}
		s.inner.mu.Lock()
		s.inner.runs[r.ID] = r
		s.inner.runOrder = append(s.inner.runOrder, r.ID)
		s.inner.mu.Unlock()
	}
	return runRows.Err()
}

func (s *SQLiteStore) SaveProfile(p PricingProfile) error {
	if err := s.inner.SaveProfile(p); err != nil {
		return err
	}
	saved, _, _ := s.inner.GetProfile(p.Name)

	blob, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT OR REPLACE INTO profiles (name, document, updated_at) VALUES (?, ?, ?)`,
		saved.Name, string(blob), saved.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) GetProfile(name string) (PricingProfile, bool, error) {
	return s.inner.GetProfile(name)
}

func (s *SQLiteStore) ListProfiles() ([]PricingProfile, error) {
	return s.inner.ListProfiles()
}

func (s *SQLiteStore) DeleteProfile(name string) error {
	if err := s.inner.DeleteProfile(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM profiles WHERE name = ?`, name)
	return err
}

func (s *SQLiteStore) SaveRun(r Run) error {
	if err := s.inner.SaveRun(r); err != nil {
		return err
	}
	blob, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT OR REPLACE INTO runs (id, profile_name, price, status, document, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProfileName, r.Price, string(r.Status), string(blob), r.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) GetRun(id string) (Run, bool, error) {
	return s.inner.GetRun(id)
}

func (s *SQLiteStore) ListRuns() ([]Run, error) {
	return s.inner.ListRuns()
}

var _ Store = (*SQLiteStore)(nil)
