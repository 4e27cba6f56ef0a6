package domain

import "errors"

var (
	// ErrNotFound is returned when no attendee matches a contact number or id.
	ErrNotFound = errors.New("attendee not found")
	// ErrInvalidPayload wraps request bodies that cannot be decoded or fail validation.
	ErrInvalidPayload = errors.New("invalid attendee payload")
)

type Attendee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ContactNo string `json:"contactNo"`
	Award     string `json:"award"`
	Category  string `json:"category"`
	Attended  bool   `json:"attended"`

	// stored is the record as it was read from storage; nil for new records.
	stored *storedRecord
}

// NewAttendee is the add payload. id and attended are assigned on insert.
type NewAttendee struct {
	Name      string `json:"name" validate:"required"`
	ContactNo string `json:"contactNo" validate:"required"`
	Award     string `json:"award,omitempty"`
	Category  string `json:"category,omitempty"`
}

// AttendeePatch carries the fields of a partial update. Nil fields are left alone.
type AttendeePatch struct {
	Name      *string `json:"name,omitempty"`
	ContactNo *string `json:"contactNo,omitempty" validate:"omitempty,min=1"`
	Award     *string `json:"award,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// Apply merges the patch over a and marks it attended.
func (p AttendeePatch) Apply(a Attendee) Attendee {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.ContactNo != nil {
		a.ContactNo = *p.ContactNo
	}
	if p.Award != nil {
		a.Award = *p.Award
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	a.Attended = true
	return a
}
