package attendee

import (
	"encoding/json"
	"fmt"

	"jesa-attendance/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decodePayload unmarshals and validates a request body into v.
func decodePayload(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}
