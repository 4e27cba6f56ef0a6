package attendee

import (
	"context"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
	"jesa-attendance/domain"
)

type GetAttendeeUC struct {
	log   *slog.Logger
	store db.Store
}

func NewGetAttendeeUC(log *slog.Logger, store db.Store) *GetAttendeeUC {
	return &GetAttendeeUC{
		log:   log,
		store: store,
	}
}

// Invoke looks an attendee up by id.
func (uc *GetAttendeeUC) Invoke(ctx context.Context, id string) (domain.Attendee, error) {
	records, err := uc.store.Load(ctx)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[get-attendee-uc] Load failed for %s: %v", id, err))
		return domain.Attendee{}, err
	}

	idx, ok := FindByID(records, id)
	if !ok {
		uc.log.Warn(fmt.Sprintf("[get-attendee-uc] Attendee %s not found.", id))
		return domain.Attendee{}, fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
	}
	return records[idx], nil
}
