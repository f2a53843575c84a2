package profile

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound reports a lookup or delete against a name that is not in
// the store.
var ErrNotFound = errors.New("not found")

// Store holds the session's saved profiles and simulation runs. Profiles
// are keyed by name and overwritten on save; runs are append-only.
type Store interface {
	SaveProfile(p PricingProfile) error
	GetProfile(name string) (PricingProfile, bool, error)
	ListProfiles() ([]PricingProfile, error)
	DeleteProfile(name string) error

	SaveRun(r Run) error
	GetRun(id string) (Run, bool, error)
	ListRuns() ([]Run, error)
}

// MemStore is the in-memory profile table. It is the single source of
// truth for a session; SQLiteStore layers write-through persistence on it.
type MemStore struct {
	mu       sync.RWMutex
	profiles map[string]PricingProfile
	runs     map[string]Run
	runOrder []string
}

func NewMemStore() *MemStore {
	return &MemStore{
		profiles: map[string]PricingProfile{},
		runs:     map[string]Run{},
	}
}

func (s *MemStore) SaveProfile(p PricingProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	s.profiles[p.Name] = p
	return nil
}

func (s *MemStore) GetProfile(name string) (PricingProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	return p, ok, nil
}

func (s *MemStore) ListProfiles() ([]PricingProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PricingProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) DeleteProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	delete(s.profiles, name)
	return nil
}

func (s *MemStore) SaveRun(r Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[r.ID]; !ok {
		s.runOrder = append(s.runOrder, r.ID)
	}
	s.runs[r.ID] = r
	return nil
}

func (s *MemStore) GetRun(id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

func (s *MemStore) ListRuns() ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Run, 0, len(s.runOrder))
	for _, id := range s.runOrder {
		out = append(out, s.runs[id])
	}
	return out, nil
}

var _ Store = (*MemStore)(nil)
