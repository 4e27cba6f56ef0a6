package attendee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
	"jesa-attendance/domain"
)

type UpdateAttendeeUC struct {
	log   *slog.Logger
	store db.Store
}

func NewUpdateAttendeeUC(log *slog.Logger, store db.Store) *UpdateAttendeeUC {
	return &UpdateAttendeeUC{
		log:   log,
		store: store,
	}
}

// Invoke merges the patch payload over the attendee with the given id.
// The merged record is returned so callers can notify its contact number.
func (uc *UpdateAttendeeUC) Invoke(ctx context.Context, id string, payload []byte) (domain.Attendee, error) {
	uc.log.Info(fmt.Sprintf("[update-attendee-uc] Starting update for ID: %s", id))

	var patch domain.AttendeePatch
	if err := decodePayload(payload, &patch); err != nil {
		uc.log.Warn(fmt.Sprintf("[update-attendee-uc] Rejected payload for %s: %v", id, err))
		return domain.Attendee{}, err
	}

	var merged domain.Attendee
	err := uc.store.Update(ctx, func(records []domain.Attendee) ([]domain.Attendee, error) {
		var err error
		merged, err = Update(records, id, patch)
		return records, err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn(fmt.Sprintf("[update-attendee-uc] Update failed for %s: Attendee not found.", id))
		} else {
			uc.log.Error(fmt.Sprintf("[update-attendee-uc] Update error for %s: %v", id, err))
		}
		return domain.Attendee{}, err
	}

	uc.log.Info(fmt.Sprintf("[update-attendee-uc] Attendee %s updated successfully. Name: %s", id, merged.Name))
	return merged, nil
}
