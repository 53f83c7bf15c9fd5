package model

import "time"

// Role is the closed set of participant roles. It is resolved once per
// request from the users table, never re-derived from string comparison
// downstream.
type Role string

const (
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCounselor, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Medium is how a meeting happens.
type Medium string

const (
	MediumInPerson Medium = "in_person"
	MediumPhone    Medium = "phone"
	MediumVideo    Medium = "video"
)

func (m Medium) Valid() bool {
	switch m {
	case MediumInPerson, MediumPhone, MediumVideo:
		return true
	}
	return false
}

// Durations are restricted to a fixed set of minute lengths.
const (
	Duration15 = 15
	Duration30 = 30
	Duration45 = 45
	Duration60 = 60
)

func ValidDuration(minutes int) bool {
	switch minutes {
	case Duration15, Duration30, Duration45, Duration60:
		return true
	}
	return false
}

// LeadStage tracks where a lead sits in the counseling funnel.
// StageConverted is terminal and is only ever set by the conversion
// workflow; once a lead reaches it, follow-up stage fields freeze.
type LeadStage string

const (
	StageNew         LeadStage = "new"
	StageContacted   LeadStage = "contacted"
	StageInterested  LeadStage = "interested"
	StageNegotiation LeadStage = "negotiation"
	StageConverted   LeadStage = "converted"
	StageLost        LeadStage = "lost"
)

func (s LeadStage) Valid() bool {
	switch s {
	case StageNew, StageContacted, StageInterested, StageNegotiation, StageConverted, StageLost:
		return true
	}
	return false
}

// FollowUpStatus holds the outcome code of a follow-up. Scheduled is the
// only "not yet happened" status; the rest are call dispositions. A
// follow-up in any status still blocks its original slot.
type FollowUpStatus string

const (
	FollowUpScheduled          FollowUpStatus = "scheduled"
	FollowUpCompleted          FollowUpStatus = "completed"
	FollowUpNoShow             FollowUpStatus = "no_show"
	FollowUpNoAnswer           FollowUpStatus = "no_answer"
	FollowUpNotInterested      FollowUpStatus = "not_interested"
	FollowUpConvertedToStudent FollowUpStatus = "converted_to_student"
)

func (s FollowUpStatus) Valid() bool {
	switch s {
	case FollowUpScheduled, FollowUpCompleted, FollowUpNoShow,
		FollowUpNoAnswer, FollowUpNotInterested, FollowUpConvertedToStudent:
		return true
	}
	return false
}

// TeamMeetStatus is the lifecycle state of a staff meeting.
type TeamMeetStatus string

const (
	TeamMeetPending   TeamMeetStatus = "pending_confirmation"
	TeamMeetConfirmed TeamMeetStatus = "confirmed"
	TeamMeetCompleted TeamMeetStatus = "completed"
	TeamMeetRejected  TeamMeetStatus = "rejected"
	TeamMeetCancelled TeamMeetStatus = "cancelled"
)

// AppointmentKind tags which side of the shared conflict surface a
// record belongs to.
type AppointmentKind string

const (
	KindFollowUp AppointmentKind = "follow_up"
	KindTeamMeet AppointmentKind = "team_meet"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Counselor is the role-specific profile a counselor user owns.
// Follow-ups reference counselors by this id, not by user id.
type Counselor struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Stage       LeadStage `json:"stage"`
	CounselorID string    `json:"counselorId"`
	OrgID       string    `json:"orgId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FollowUp is one link in a lead's follow-up chain. Sequence is 1-based
// and scoped to the lead; the follow-up whose sequence equals the lead's
// follow-up count is the only unlocked one.
type FollowUp struct {
	ID             string         `json:"id"`
	LeadID         string         `json:"leadId"`
	CounselorID    string         `json:"counselorId"`
	Date           time.Time      `json:"date"`
	StartTime      string         `json:"startTime"` // wall clock "HH:mm"
	Duration       int            `json:"duration"`  // minutes
	Medium         Medium         `json:"medium"`
	Status         FollowUpStatus `json:"status"`
	LeadStage      LeadStage      `json:"leadStage"` // lead's stage when this follow-up was made
	StageChangedTo LeadStage      `json:"stageChangedTo,omitempty"`
	Sequence       int            `json:"sequence"`
	Notes          string         `json:"notes"`
	MeetingLink    string         `json:"meetingLink,omitempty"`
	CreatedBy      string         `json:"createdBy"`
	UpdatedBy      string         `json:"updatedBy,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type TeamMeet struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	Description      string         `json:"description,omitempty"`
	Date             time.Time      `json:"date"`
	StartTime        string         `json:"startTime"` // wall clock "HH:mm"
	Duration         int            `json:"duration"`  // minutes
	Medium           Medium         `json:"medium"`
	RequesterID      string         `json:"requesterId"`
	RecipientID      string         `json:"recipientId"`
	OrgID            string         `json:"orgId"`
	Status           TeamMeetStatus `json:"status"`
	RejectionMessage string         `json:"rejectionMessage,omitempty"`
	MeetingLink      string         `json:"meetingLink,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
