// Package jsonfile implements the ledger ports on top of a flat JSON
// file. The whole collection lives in memory; the file is loaded once
// at startup and rewritten atomically after every mutation.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

const dateLayout = "2006-01-02"

// Store persists expense records in a single JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	nextID int64
	items  []core.Record
}

var (
	_ ledger.Store   = (*Store)(nil)
	_ ledger.Querier = (*Store)(nil)
)

// fileRecord is the serialized form of a record.
type fileRecord struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

type fileLedger struct {
	NextID  int64        `json:"next_id"`
	Records []fileRecord `json:"records"`
}

// Open loads the ledger file at path, creating the parent directory if
// needed. A missing or unreadable file starts an empty ledger rather
// than failing startup.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s := &Store{path: path, nextID: 1}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var fl fileLedger
	if err := json.Unmarshal(data, &fl); err != nil {
		// Corrupt file: start empty, same as the missing-file case.
		return s, nil
	}
	for _, fr := range fl.Records {
		d, err := time.Parse(dateLayout, fr.Date)
		if err != nil {
			continue
		}
		s.items = append(s.items, core.Record{
			ID:          fr.ID,
			Date:        core.Date{Time: d},
			Category:    fr.Category,
			Description: fr.Description,
			Amount:      core.Money{Cents: fr.AmountCents},
		})
		if fr.ID >= s.nextID {
			s.nextID = fr.ID + 1
		}
	}
	if fl.NextID > s.nextID {
		s.nextID = fl.NextID
	}
	return s, nil
}

// Add stores the record and persists the file. On a save failure the
// record stays in memory and the file is rewritten on the next mutation.
func (s *Store) Add(_ context.Context, r core.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	s.items = append(s.items, r)
	if err := s.save(); err != nil {
		return r.ID, fmt.Errorf("persist ledger: %w", err)
	}
	return r.ID, nil
}

func (s *Store) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			if err := s.save(); err != nil {
				return true, fmt.Errorf("persist ledger: %w", err)
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.save(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (s *Store) All(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (s *Store) ListByCategory(_ context.Context, category string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterByCategory(s.snapshot(), category), nil
}

func (s *Store) ListByMonth(_ context.Context, year, month int) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterByMonth(s.snapshot(), year, month), nil
}

func (s *Store) Overview(_ context.Context) (core.Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.BuildOverview(s.items), nil
}

func (s *Store) Trend(_ context.Context) ([]core.MonthTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthlyTrend(s.items), nil
}

// save writes the whole ledger to a temp file and renames it into
// place, so a crash mid-write never leaves a truncated file.
// Callers must hold s.mu.
func (s *Store) save() error {
	fl := fileLedger{NextID: s.nextID, Records: make([]fileRecord, 0, len(s.items))}
	for _, r := range s.items {
		fl.Records = append(fl.Records, fileRecord{
			ID:          r.ID,
			Date:        r.Date.Format(dateLayout),
			Category:    r.Category,
			Description: r.Description,
			AmountCents: r.Amount.Cents,
		})
	}
	data, err := json.MarshalIndent(fl, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *Store) snapshot() []core.Record {
	out := make([]core.Record, len(s.items))
	copy(out, s.items)
	return out
}
