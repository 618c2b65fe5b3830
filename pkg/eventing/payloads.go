package eventing

import (
	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// AccountCreatedEvent is emitted by the identity service for every new account.
type AccountCreatedEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

// InvitationAcceptedEvent rewards the inviter once the invitee joins.
type InvitationAcceptedEvent struct {
	InvitationID string           `json:"invitation_id"`
	InviterID    uuid.UUID        `json:"inviter_id"`
	InviteeID    uuid.UUID        `json:"invitee_id"`
	Color        enums.FruitColor `json:"color"`
}

// ChallengeApprovedEvent rewards a student whose challenge submission was approved.
type ChallengeApprovedEvent struct {
	SubmissionID string           `json:"submission_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Color        enums.FruitColor `json:"color"`
	Title        string           `json:"title,omitempty"`
}

// AttendanceRecordedEvent rewards a student marked present at a service.
type AttendanceRecordedEvent struct {
	AttendanceID string           `json:"attendance_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Color        enums.FruitColor `json:"color"`
	ServiceName  string           `json:"service_name,omitempty"`
}
