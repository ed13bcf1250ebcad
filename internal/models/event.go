package models

import (
	"time"

	"github.com/lib/pq"
)

// EventType tags every persisted event record.
const EventType = "event"

// DefaultCreatorUID is stamped on creates that do not carry a uid.
const DefaultCreatorUID = 18

// Event is the persisted event record. The store is loosely typed about
// payloads; this struct is the single typed shape all input is normalized
// into before any store interaction.
type Event struct {
	ID          string         `db:"id" json:"id"`
	Type        string         `db:"type" json:"type"`
	UID         int            `db:"uid" json:"uid"`
	Name        string         `db:"name" json:"name"`
	Tagline     string         `db:"tagline" json:"tagline"`
	Schedule    time.Time      `db:"schedule" json:"schedule"`
	Description string         `db:"description" json:"description"`
	Image       string         `db:"image" json:"image"`
	Moderator   string         `db:"moderator" json:"moderator"`
	Category    string         `db:"category" json:"category"`
	SubCategory string         `db:"sub_category" json:"sub_category"`
	RigorRank   int            `db:"rigor_rank" json:"rigor_rank"`
	Attendees   pq.StringArray `db:"attendees" json:"attendees"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Pagination contains list metadata returned in the response envelope.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalEvents int  `json:"totalEvents"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}
