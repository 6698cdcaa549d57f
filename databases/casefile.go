package databases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/lokmitra/case-api/models"
)

// CaseFile persists the full case collection as one pretty-printed JSON
// array. The collection is cached in memory behind a mutex so every store
// call is a serialized critical section; writes go through a temp file and
// rename so a crash mid-write cannot truncate the store.
type CaseFile struct {
	mu    sync.RWMutex
	path  string
	cases []models.Case
}

// NewCaseFile opens (or creates) the store at path and loads the collection
func NewCaseFile(path string) (*CaseFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &CaseFile{path: path, cases: []models.Case{}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the persisted array. Unreadable or unparsable content degrades
// to an empty collection rather than failing; the condition is logged.
func (s *CaseFile) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		zap.S().Infow("case store does not exist yet, creating it", "path", s.path)
		return s.saveLocked()
	}
	if err != nil {
		zap.S().Errorw("failed to read case store, starting empty", "path", s.path, "error", err)
		return nil
	}

	var cases []models.Case
	if err := json.Unmarshal(raw, &cases); err != nil {
		zap.S().Errorw("failed to parse case store, starting empty", "path", s.path, "error", err)
		return nil
	}
	if cases == nil {
		cases = []models.Case{}
	}
	s.cases = cases
	return nil
}

// Find returns the full collection in insertion order
func (s *CaseFile) Find(ctx context.Context) ([]models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Case, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

// FindOne returns the case with the given id
func (s *CaseFile) FindOne(ctx context.Context, id string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.cases {
		if s.cases[i].ID == id {
			c := s.cases[i]
			return &c, nil
		}
	}
	return nil, ErrCaseNotFound
}

// InsertOne appends a case and persists the full collection
func (s *CaseFile) InsertOne(ctx context.Context, c models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cases = append(s.cases, c)
	return s.saveLocked()
}

// UpdateOne replaces the case with the same id and persists the collection
func (s *CaseFile) UpdateOne(ctx context.Context, c models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cases {
		if s.cases[i].ID == c.ID {
			s.cases[i] = c
			return s.saveLocked()
		}
	}
	return ErrCaseNotFound
}

func (s *CaseFile) saveLocked() error {
	b, err := json.MarshalIndent(s.cases, "", "  ")
	if err != nil {
		return fmt.Errorf("encode case store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "cases-*.json")
	if err != nil {
		return fmt.Errorf("create temp case store: %w", err)
	}

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write case store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp case store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace case store: %w", err)
	}
	return nil
}
