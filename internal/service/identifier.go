package service

import (
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/events-api/pkg/errors"
)

// DecodeEventID validates an externally supplied identifier string and
// returns its canonical form. A malformed identifier is a caller error
// (400), kept distinct from a well-formed identifier that matches nothing
// (404). Never panics.
func DecodeEventID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", appErrors.Clone(appErrors.ErrInvalidID, "event id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", appErrors.ErrInvalidID
	}
	return id.String(), nil
}
