package entity

import "time"

// Tipos de seguimiento.
const (
	FollowUpCall    = "CALL"
	FollowUpVisit   = "VISIT"
	FollowUpEmail   = "EMAIL"
	FollowUpMeeting = "MEETING"
)

// FollowUpStatus estado de FollowUp.
type FollowUpStatus string

const (
	FollowUpScheduled FollowUpStatus = "SCHEDULED"
	FollowUpCompleted FollowUpStatus = "COMPLETED"
	FollowUpCancelled FollowUpStatus = "CANCELLED"
)

// FollowUp seguimiento comercial de un cliente.
type FollowUp struct {
	ID               string
	ClientID         string
	UserID           string
	FollowUpDate     time.Time
	Type             string
	Notes            string
	Outcome          string
	NextFollowUpDate *time.Time
	Status           FollowUpStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
