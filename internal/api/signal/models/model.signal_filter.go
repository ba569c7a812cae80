package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode của một SignalFilter
const (
	FilterModeActive   = "active"   // Áp dụng khi ingest
	FilterModeMonitor  = "monitor"  // Chỉ đếm, không đổi filter_action_taken
	FilterModeInactive = "inactive" // Bỏ qua
)

// Action của một SignalFilter
const (
	FilterActionSnooze      = "snooze"
	FilterActionDeduplicate = "deduplicate"
	FilterActionNone        = "none"
)

// SignalFilter là một rule suppression/dedupe gắn với một signal.
// Expression là cây JSON boolean (package filterexpr), được validate lúc lưu.
type SignalFilter struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_filter_name_unique"`
	SignalID  primitive.ObjectID `json:"signalId" bson:"signalId,omitempty" index:"single:1"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_filter_name_unique"`

	Expression    string `json:"expression" bson:"expression,omitempty"` // Cây JSON boolean đã validate
	Mode          string `json:"mode" bson:"mode,omitempty"`
	Action        string `json:"action" bson:"action,omitempty"`
	WindowSeconds int64  `json:"windowSeconds" bson:"windowSeconds,omitempty"`
	Expiration    int64  `json:"expiration" bson:"expiration,omitempty"` // UnixMilli; 0 = không hết hạn

	// MatchCount đếm số lần khớp (cả mode monitor), phục vụ quan sát rule
	MatchCount int64 `json:"matchCount" bson:"matchCount,omitempty"`

	CreatorID primitive.ObjectID `json:"creatorId" bson:"creatorId,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}
