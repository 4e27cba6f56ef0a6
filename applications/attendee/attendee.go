package attendee

import (
	"fmt"
	"strconv"

	"jesa-attendance/domain"

	"github.com/samber/lo"
)

// FindByContact returns the first attendee with the given contact number and its index.
func FindByContact(records []domain.Attendee, contactNo string) (domain.Attendee, int, bool) {
	return lo.FindIndexOf(records, func(a domain.Attendee) bool {
		return a.ContactNo == contactNo
	})
}

// FindByID returns the index of the attendee with the given id.
func FindByID(records []domain.Attendee, id string) (int, bool) {
	_, idx, ok := lo.FindIndexOf(records, func(a domain.Attendee) bool {
		return a.ID == id
	})
	return idx, ok
}

// Add appends a new attendee with id len(records)+1, already marked attended.
func Add(records []domain.Attendee, n domain.NewAttendee) ([]domain.Attendee, domain.Attendee) {
	a := domain.Attendee{
		ID:        strconv.Itoa(len(records) + 1),
		Name:      n.Name,
		ContactNo: n.ContactNo,
		Award:     n.Award,
		Category:  n.Category,
		Attended:  true,
	}
	return append(records, a), a
}

// Update merges patch over the attendee with the given id, in place.
func Update(records []domain.Attendee, id string, patch domain.AttendeePatch) (domain.Attendee, error) {
	idx, ok := FindByID(records, id)
	if !ok {
		return domain.Attendee{}, fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
	}
	records[idx] = patch.Apply(records[idx])
	return records[idx], nil
}

// MarkAttended flags the attendee with the given contact number as present, in place.
func MarkAttended(records []domain.Attendee, contactNo string) (domain.Attendee, error) {
	_, idx, ok := FindByContact(records, contactNo)
	if !ok {
		return domain.Attendee{}, fmt.Errorf("%w: contact %s", domain.ErrNotFound, contactNo)
	}
	records[idx].Attended = true
	return records[idx], nil
}
