package attendee

import (
	"context"
	"fmt"
	"log/slog"

	"jesa-attendance/db"
	"jesa-attendance/domain"
)

type GetAllAttendeesUC struct {
	log   *slog.Logger
	store db.Store
}

func NewGetAllAttendeesUC(log *slog.Logger, store db.Store) *GetAllAttendeesUC {
	return &GetAllAttendeesUC{
		log:   log,
		store: store,
	}
}

// Invoke returns the persisted collection unmodified, in stored order.
func (uc *GetAllAttendeesUC) Invoke(ctx context.Context) ([]domain.Attendee, error) {
	uc.log.Info("[get-all-attendees-uc] Starting retrieval of all attendee records.")

	records, err := uc.store.Load(ctx)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[get-all-attendees-uc] Load failed: %v", err))
		return nil, err
	}

	uc.log.Info(fmt.Sprintf("[get-all-attendees-uc] Successfully retrieved %d attendee records.", len(records)))
	return records, nil
}
