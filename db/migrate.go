// db/migrate.go
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jesa-attendance/logger"
)

// EnsureDocument creates the data directory and an empty attendee document
// when none exists yet. An existing document is never touched.
func EnsureDocument(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	_, err := os.Stat(path)
	if err == nil {
		logger.Log.Info(fmt.Sprintf("[db] Using existing attendee document %s", path))
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error inspecting attendee document: %w", err)
	}

	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("error seeding attendee document: %w", err)
	}
	logger.Log.Info(fmt.Sprintf("[db] Seeded empty attendee document %s", path))
	return nil
}
