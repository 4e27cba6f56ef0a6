package attendee

import (
	"context"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
)

type ExportAttendeesUC struct {
	log   *slog.Logger
	store db.Store
}

func NewExportAttendeesUC(log *slog.Logger, store db.Store) *ExportAttendeesUC {
	return &ExportAttendeesUC{
		log:   log,
		store: store,
	}
}

// Invoke regenerates the CSV export from the current collection and returns its path.
func (uc *ExportAttendeesUC) Invoke(ctx context.Context) (string, error) {
	records, err := uc.store.Load(ctx)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[export-attendees-uc] Load failed: %v", err))
		return "", err
	}

	path, err := uc.store.ExportCSV(ctx, records)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[export-attendees-uc] CSV export failed: %v", err))
		return "", err
	}
	return path, nil
}
