package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jesa-attendance/domain"
	"jesa-attendance/logger"
)

// CSVFileName is the export file written next to the attendee document.
const CSVFileName = "attendees.csv"

var csvHeader = []string{"ID", "Name", "Contact Number", "Award", "Category", "Attended"}

// WriteCSV renders records into dir/attendees.csv, replacing any previous export.
func WriteCSV(dir string, records []domain.Attendee) (string, error) {
	path := filepath.Join(dir, CSVFileName)

	file, err := os.Create(path)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[db] Failed to create %s: %v", path, err))
		return "", fmt.Errorf("%w: create %s: %v", ErrStorage, path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("%w: write csv header: %v", ErrStorage, err)
	}
	for _, a := range records {
		row := []string{a.ID, a.Name, a.ContactNo, a.Award, a.Category, strconv.FormatBool(a.Attended)}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("%w: write csv row %s: %v", ErrStorage, a.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: flush csv: %v", ErrStorage, err)
	}

	logger.Log.Info(fmt.Sprintf("[db] Exported %d attendee records to %s", len(records), path))
	return path, nil
}
