package dto

import (
	"time"

	"github.com/noah-isme/events-api/internal/models"
)

// RawEventForm captures a multipart submission exactly as it arrived:
// untyped strings, with pointers preserving the present-vs-absent
// distinction that drives create-vs-update semantics.
type RawEventForm struct {
	UID         *string
	Name        *string
	Tagline     *string
	Schedule    *string
	Description *string
	Moderator   *string
	Category    *string
	SubCategory *string
	RigorRank   *string
	Attendees   *string
}

// Empty reports whether no field at all was submitted.
func (f RawEventForm) Empty() bool {
	return f.UID == nil && f.Name == nil && f.Tagline == nil && f.Schedule == nil &&
		f.Description == nil && f.Moderator == nil && f.Category == nil &&
		f.SubCategory == nil && f.RigorRank == nil && f.Attendees == nil
}

// IntField is the result of normalizing an integer-typed form value.
// Set=false means the field was absent; Set && !Valid is the not-a-number
// sentinel, detected later by the validator rather than rejected during
// normalization.
type IntField struct {
	Set   bool
	Valid bool
	Value int
}

// MomentField is the result of normalizing a date/time form value, with the
// same sentinel convention as IntField.
type MomentField struct {
	Set   bool
	Valid bool
	Value time.Time
}

// NormalizedEvent is the typed mid-pipeline record: every field parsed,
// nothing validated yet.
type NormalizedEvent struct {
	UID          IntField
	Name         *string
	Tagline      *string
	Schedule     MomentField
	Description  *string
	Moderator    *string
	Category     *string
	SubCategory  *string
	RigorRank    IntField
	Attendees    []string
	AttendeesSet bool
	ImagePath    string
}

// EventPage bundles one page of events with its pagination metadata, both
// for responses and for the read cache.
type EventPage struct {
	Events     []models.Event    `json:"events"`
	Pagination models.Pagination `json:"pagination"`
}
