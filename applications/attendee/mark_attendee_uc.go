package attendee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
	"jesa-attendance/domain"
)

type MarkAttendeeUC struct {
	log   *slog.Logger
	store db.Store
}

func NewMarkAttendeeUC(log *slog.Logger, store db.Store) *MarkAttendeeUC {
	return &MarkAttendeeUC{
		log:   log,
		store: store,
	}
}

// Invoke marks the attendee holding contactNo as present and persists the collection.
func (uc *MarkAttendeeUC) Invoke(ctx context.Context, contactNo string) (domain.Attendee, error) {
	uc.log.Info(fmt.Sprintf("[mark-attendee-uc] Marking attendance for contact: %s", contactNo))

	var marked domain.Attendee
	err := uc.store.Update(ctx, func(records []domain.Attendee) ([]domain.Attendee, error) {
		var err error
		marked, err = MarkAttended(records, contactNo)
		return records, err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn(fmt.Sprintf("[mark-attendee-uc] No attendee with contact %s.", contactNo))
		} else {
			uc.log.Error(fmt.Sprintf("[mark-attendee-uc] Marking %s failed: %v", contactNo, err))
		}
		return domain.Attendee{}, err
	}

	uc.log.Info(fmt.Sprintf("[mark-attendee-uc] Attendee %s (%s) marked as attended.", marked.ID, marked.Name))
	return marked, nil
}
