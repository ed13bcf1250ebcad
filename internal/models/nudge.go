package models

import "time"

// NudgeStatus is the delivery state of a nudge.
type NudgeStatus string

const (
	NudgeStatusPending   NudgeStatus = "pending"
	NudgeStatusSent      NudgeStatus = "sent"
	NudgeStatusCancelled NudgeStatus = "cancelled"
)

// Nudge is a scheduled notification attached to an event. The entity is
// documented in docs/nudges.md; delivery (pending -> sent) is owned by an
// external process and no HTTP surface exists for it yet.
type Nudge struct {
	ID          string      `db:"id" json:"id"`
	EventID     string      `db:"event_id" json:"event_id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	CoverImage  string      `db:"cover_image" json:"cover_image"`
	Icon        string      `db:"icon" json:"icon"`
	Invitation  string      `db:"invitation" json:"invitation"`
	SendAt      time.Time   `db:"send_at" json:"send_at"`
	ExpiresAt   time.Time   `db:"expires_at" json:"expires_at"`
	Status      NudgeStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// CanTransition reports whether moving to the target status is legal.
// Both sent and cancelled are terminal.
func (n *Nudge) CanTransition(target NudgeStatus) bool {
	if n == nil {
		return false
	}
	switch n.Status {
	case NudgeStatusPending:
		return target == NudgeStatusSent || target == NudgeStatusCancelled
	default:
		return false
	}
}
