package attendee

import (
	"context"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
	"jesa-attendance/domain"
)

type AddAttendeeUC struct {
	log   *slog.Logger
	store db.Store
}

func NewAddAttendeeUC(log *slog.Logger, store db.Store) *AddAttendeeUC {
	return &AddAttendeeUC{
		log:   log,
		store: store,
	}
}

// Invoke decodes and validates the add payload, then appends the attendee.
func (uc *AddAttendeeUC) Invoke(ctx context.Context, payload []byte) (domain.Attendee, error) {
	var n domain.NewAttendee
	if err := decodePayload(payload, &n); err != nil {
		uc.log.Warn(fmt.Sprintf("[add-attendee-uc] Rejected payload: %v", err))
		return domain.Attendee{}, err
	}

	var created domain.Attendee
	err := uc.store.Update(ctx, func(records []domain.Attendee) ([]domain.Attendee, error) {
		var updated []domain.Attendee
		updated, created = Add(records, n)
		return updated, nil
	})
	if err != nil {
		uc.log.Error(fmt.Sprintf("[add-attendee-uc] Insert failed for %s: %v", n.ContactNo, err))
		return domain.Attendee{}, err
	}

	uc.log.Info(fmt.Sprintf("[add-attendee-uc] Attendee created. ID: %s, Name: %s", created.ID, created.Name))
	return created, nil
}
