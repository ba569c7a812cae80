package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại event trong timeline
const (
	EventKindTransition   = "transition"
	EventKindEffect       = "effect"
	EventKindEffectFailed = "effect_failed"
	EventKindRoleAssigned = "role_assigned"
	EventKindRoleRenounce = "role_renounced"
	EventKindNote         = "note"
)

// Event là một dòng timeline của case/incident. Mọi effect fan-out (kể cả
// thất bại) đều ghi một event để timeline phản ánh đủ những gì đã xảy ra.
type Event struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	CaseID     primitive.ObjectID `json:"caseId" bson:"caseId,omitempty" index:"single:1"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty" index:"single:1"`

	Kind    string                 `json:"kind" bson:"kind,omitempty"`
	Message string                 `json:"message" bson:"message,omitempty"`
	Details map[string]interface{} `json:"details" bson:"details,omitempty"`
	ActorID primitive.ObjectID     `json:"actorId" bson:"actorId,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// IncidentFeedback là phản hồi sau incident của một participant
type IncidentFeedback struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID  primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty" index:"single:1"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId,omitempty"`

	Rating  int    `json:"rating" bson:"rating,omitempty"`
	Comment string `json:"comment" bson:"comment,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// FeedbackReminder là lời nhắc phản hồi đang chờ; worker quét theo ReminderAt
type FeedbackReminder struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	// Đích của lời nhắc: email người nhận và subject liên quan
	Email      string             `json:"email" bson:"email,omitempty"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty"`
	ServiceRef string             `json:"serviceRef" bson:"serviceRef,omitempty"`
	Message    string             `json:"message" bson:"message,omitempty"`

	ReminderAt int64 `json:"reminderAt" bson:"reminderAt,omitempty" index:"single:1"`
	SentAt     int64 `json:"sentAt" bson:"sentAt,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
