package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/events-api/internal/dto"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
)

// ValidationMode selects create or update semantics for normalization and
// validation.
type ValidationMode int

const (
	ModeCreate ValidationMode = iota
	ModeUpdate
)

// scheduleLayouts lists the accepted date/time encodings, most specific
// first.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeEvent coerces the stringly-typed form into the typed shape the
// domain model expects. Parsing failures on integer and date fields produce
// sentinels for the validator; a malformed attendees encoding is rejected
// here because a silent default would lose caller data.
func NormalizeEvent(form dto.RawEventForm, mode ValidationMode) (*dto.NormalizedEvent, error) {
	rec := &dto.NormalizedEvent{
		UID:         parseIntField(form.UID),
		Name:        form.Name,
		Tagline:     form.Tagline,
		Schedule:    parseMomentField(form.Schedule),
		Description: form.Description,
		Moderator:   form.Moderator,
		Category:    form.Category,
		SubCategory: form.SubCategory,
		RigorRank:   parseIntField(form.RigorRank),
	}

	switch {
	case form.Attendees != nil:
		attendees, err := parseAttendees(*form.Attendees)
		if err != nil {
			return nil, err
		}
		rec.Attendees = attendees
		rec.AttendeesSet = true
	case mode == ModeCreate:
		rec.Attendees = []string{}
		rec.AttendeesSet = true
	}

	return rec, nil
}

func parseIntField(raw *string) dto.IntField {
	if raw == nil {
		return dto.IntField{}
	}
	value, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return dto.IntField{Set: true}
	}
	return dto.IntField{Set: true, Valid: true, Value: value}
}

func parseMomentField(raw *string) dto.MomentField {
	if raw == nil {
		return dto.MomentField{}
	}
	trimmed := strings.TrimSpace(*raw)
	for _, layout := range scheduleLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return dto.MomentField{Set: true, Valid: true, Value: ts.UTC()}
		}
	}
	return dto.MomentField{Set: true}
}

func parseAttendees(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}, nil
	}
	var attendees []string
	if err := json.Unmarshal([]byte(trimmed), &attendees); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendees must be a JSON array of strings")
	}
	if attendees == nil {
		attendees = []string{}
	}
	return attendees, nil
}
