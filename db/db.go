package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"jesa-attendance/domain"
	"jesa-attendance/logger"
)

var (
	// ErrStorage covers a missing, unreadable or malformed document and failed writes.
	ErrStorage = errors.New("storage error")
	// ErrDuplicateContact is returned by stores that enforce unique contact numbers.
	ErrDuplicateContact = errors.New("contact number already registered")
)

// UpdateFunc receives the current collection and returns the collection to persist.
// Returning an error aborts the write.
type UpdateFunc func(records []domain.Attendee) ([]domain.Attendee, error)

// Store owns the attendee collection between requests.
type Store interface {
	Load(ctx context.Context) ([]domain.Attendee, error)
	SaveAll(ctx context.Context, records []domain.Attendee) error
	// Update runs a load, fn, save cycle that no other Update can interleave with.
	Update(ctx context.Context, fn UpdateFunc) error
	// ExportCSV writes the collection as attendees.csv and returns its path.
	ExportCSV(ctx context.Context, records []domain.Attendee) (string, error)
	Close() error
}

// FileStore keeps the collection as one indented JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) ([]domain.Attendee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Failed to read %s: %v", s.path, err))
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, s.path, err)
	}
	return decode(data)
}

func (s *FileStore) SaveAll(ctx context.Context, records []domain.Attendee) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if current, err := os.ReadFile(s.path); err == nil && unchanged(current, records) {
		logger.Log.Debug(fmt.Sprintf("[db] %s already up to date, skipping write", s.path))
		return nil
	}

	data, err := encode(records)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".attendees-*.json")
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Failed to create temp file next to %s: %v", s.path, err))
		return fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		logger.Log.Error(fmt.Sprintf("[db] Failed to write %s: %v", tmpName, err))
		return fmt.Errorf("%w: write: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Failed to replace %s: %v", s.path, err))
		return fmt.Errorf("%w: replace %s: %v", ErrStorage, s.path, err)
	}

	logger.Log.Debug(fmt.Sprintf("[db] Persisted %d attendee records to %s", len(records), s.path))
	return nil
}

func (s *FileStore) Update(ctx context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return s.SaveAll(ctx, updated)
}

func (s *FileStore) ExportCSV(ctx context.Context, records []domain.Attendee) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return WriteCSV(filepath.Dir(s.path), records)
}

func (s *FileStore) Close() error { return nil }

func decode(data []byte) ([]domain.Attendee, error) {
	var records []domain.Attendee
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Attendee document is malformed: %v", err))
		return nil, fmt.Errorf("%w: malformed document: %v", ErrStorage, err)
	}
	if records == nil {
		records = make([]domain.Attendee, 0)
	}
	return records, nil
}

// encode lays the collection out as a two-space indented array. Unmodified
// records are written back byte for byte; modified ones are indented to match.
func encode(records []domain.Attendee) ([]byte, error) {
	if len(records) == 0 {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, a := range records {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString("  ")
		if raw, ok := a.Raw(); ok {
			buf.Write(raw)
			continue
		}
		data, err := a.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%w: encode attendee %s: %v", ErrStorage, a.ID, err)
		}
		if err := json.Indent(&buf, data, "  ", "  "); err != nil {
			return nil, fmt.Errorf("%w: encode attendee %s: %v", ErrStorage, a.ID, err)
		}
	}
	buf.WriteString("\n]")
	return buf.Bytes(), nil
}

// unchanged reports whether document already holds exactly records, untouched.
func unchanged(document []byte, records []domain.Attendee) bool {
	var current []json.RawMessage
	if err := json.Unmarshal(document, &current); err != nil || len(current) != len(records) {
		return false
	}
	for i, a := range records {
		raw, ok := a.Raw()
		if !ok || !bytes.Equal(raw, current[i]) {
			return false
		}
	}
	return true
}
