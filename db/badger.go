package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jesa-attendance/domain"
	"jesa-attendance/logger"

	"github.com/dgraph-io/badger/v4"
)

var collectionKey = []byte("attendees")

func contactKey(contactNo string) []byte {
	return []byte("contact:" + contactNo)
}

// BadgerStore keeps the ordered collection under one key and indexes contact
// numbers so that a write introducing a duplicate is rejected.
type BadgerStore struct {
	db        *badger.DB
	exportDir string
	mu        sync.Mutex
}

// OpenBadgerStore opens (or creates) a Badger database in dir. CSV exports go to exportDir.
func OpenBadgerStore(dir, exportDir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %v", ErrStorage, err)
	}
	return NewBadgerStore(bdb, exportDir), nil
}

func NewBadgerStore(bdb *badger.DB, exportDir string) *BadgerStore {
	return &BadgerStore{db: bdb, exportDir: exportDir}
}

func (s *BadgerStore) Load(ctx context.Context) ([]domain.Attendee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []domain.Attendee
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = readCollection(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BadgerStore) SaveAll(ctx context.Context, records []domain.Attendee) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := readCollection(txn)
		if err != nil {
			return err
		}
		return writeCollection(txn, old, records)
	})
}

func (s *BadgerStore) Update(ctx context.Context, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := readCollection(txn)
		if err != nil {
			return err
		}
		updated, err := fn(old)
		if err != nil {
			return err
		}
		if err := checkContacts(txn, old, updated); err != nil {
			return err
		}
		return writeCollection(txn, old, updated)
	})
}

func (s *BadgerStore) ExportCSV(ctx context.Context, records []domain.Attendee) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return WriteCSV(s.exportDir, records)
}

func (s *BadgerStore) Close() error {
	logger.Log.Info("[db] Closing BadgerDB...")
	return s.db.Close()
}

func readCollection(txn *badger.Txn) ([]domain.Attendee, error) {
	item, err := txn.Get(collectionKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return make([]domain.Attendee, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read collection: %v", ErrStorage, err)
	}

	var records []domain.Attendee
	err = item.Value(func(val []byte) error {
		records, err = decode(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// checkContacts rejects records whose contact number is new or changed and
// already belongs to another attendee.
func checkContacts(txn *badger.Txn, old, updated []domain.Attendee) error {
	oldContact := make(map[string]string, len(old))
	for _, a := range old {
		oldContact[a.ID] = a.ContactNo
	}
	newContact := make(map[string]string, len(updated))
	for _, a := range updated {
		newContact[a.ID] = a.ContactNo
	}

	seen := make(map[string]string, len(updated))
	for _, a := range updated {
		if a.ContactNo == "" {
			continue
		}
		prev, existed := oldContact[a.ID]
		changed := !existed || prev != a.ContactNo
		other, dup := seen[a.ContactNo]
		seen[a.ContactNo] = a.ID
		if !changed {
			continue
		}
		if dup && other != a.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateContact, a.ContactNo)
		}

		item, err := txn.Get(contactKey(a.ContactNo))
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: read contact index: %v", ErrStorage, err)
		}
		holder, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("%w: read contact index: %v", ErrStorage, err)
		}
		if id := string(holder); id != a.ID && newContact[id] == a.ContactNo {
			return fmt.Errorf("%w: %s", ErrDuplicateContact, a.ContactNo)
		}
	}
	return nil
}

func writeCollection(txn *badger.Txn, old, updated []domain.Attendee) error {
	data, err := encode(updated)
	if err != nil {
		return err
	}
	if err := txn.Set(collectionKey, data); err != nil {
		return fmt.Errorf("%w: write collection: %v", ErrStorage, err)
	}

	for _, a := range old {
		if a.ContactNo == "" {
			continue
		}
		if err := txn.Delete(contactKey(a.ContactNo)); err != nil {
			return fmt.Errorf("%w: clear contact index: %v", ErrStorage, err)
		}
	}
	for _, a := range updated {
		if a.ContactNo == "" {
			continue
		}
		if err := txn.Set(contactKey(a.ContactNo), []byte(a.ID)); err != nil {
			return fmt.Errorf("%w: write contact index: %v", ErrStorage, err)
		}
	}
	return nil
}
