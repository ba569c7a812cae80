// Package models - domain cost: plugin event, cost model, activity span và
// kết quả tính chi phí.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại model tính chi phí
const (
	CostModelTypeActivity = "activity"
	CostModelTypeClassic  = "classic"
)

// PluginEvent là loại sự kiện do plugin báo về (tin nhắn chat, sửa tài liệu...)
// dùng làm nguồn sinh activity span; (project, slug) duy nhất.
type PluginEvent struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:participant_activities,field:pluginEventId,message:Plugin event đang có activity trực thuộc"`

	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID   primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_plugin_event_slug_unique"`
	Slug        string             `json:"slug" bson:"slug,omitempty" index:"compound:project_plugin_event_slug_unique"`
	Description string             `json:"description" bson:"description,omitempty"`
	Enabled     bool               `json:"enabled" bson:"enabled"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// CostModelActivity là một dòng trọng số: sự kiện nào quy ra bao nhiêu giây
type CostModelActivity struct {
	PluginEventID       primitive.ObjectID `json:"pluginEventId" bson:"pluginEventId,omitempty"`
	ResponseTimeSeconds int64              `json:"responseTimeSeconds" bson:"responseTimeSeconds,omitempty"`
	Enabled             bool               `json:"enabled" bson:"enabled"`
}

// CostModel là danh sách activity có trọng số của một project
type CostModel struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_cost_model_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_cost_model_name_unique"`
	Enabled   bool               `json:"enabled" bson:"enabled"`

	Activities []CostModelActivity `json:"activities" bson:"activities,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// ParticipantActivity là một khoảng thời gian hoạt động của một user trên một
// case/incident, sinh từ một plugin event. Bất biến: StartedAt <= EndedAt và
// các span của cùng (user, subject) không chồng lấn sau merge.
type ParticipantActivity struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId,omitempty" index:"single:1"`

	CaseID     primitive.ObjectID `json:"caseId" bson:"caseId,omitempty" index:"single:1"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty" index:"single:1"`

	PluginEventID primitive.ObjectID `json:"pluginEventId" bson:"pluginEventId,omitempty"`

	StartedAt int64 `json:"startedAt" bson:"startedAt,omitempty"`
	EndedAt   int64 `json:"endedAt" bson:"endedAt,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// DurationMillis trả về độ dài span
func (a *ParticipantActivity) DurationMillis() int64 {
	return a.EndedAt - a.StartedAt
}

// ResponseCost là kết quả tính chi phí của một case/incident theo một model;
// mỗi subject luôn có đủ hai dòng (activity và classic).
type ResponseCost struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	CaseID     primitive.ObjectID `json:"caseId" bson:"caseId,omitempty" index:"single:1;compound:case_cost_model_unique"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty" index:"single:1;compound:incident_cost_model_unique"`
	ModelType  string             `json:"modelType" bson:"modelType,omitempty" index:"compound:case_cost_model_unique;compound:incident_cost_model_unique"`

	Amount     float64 `json:"amount" bson:"amount"`
	HourlyRate float64 `json:"hourlyRate" bson:"hourlyRate"`
	ComputedAt int64   `json:"computedAt" bson:"computedAt,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
