package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignalInstance là một lần xuất hiện của signal, bất biến sau khi ghi
// (trừ case_ref được gắn lại bởi retry và cờ degraded được gỡ khi reprocess).
// UID là UUID công khai; _id vẫn là ObjectID nội bộ theo convention chung.
type SignalInstance struct {
	ID  primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UID string             `json:"id" bson:"uid,omitempty" index:"unique"`

	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`
	SignalID  primitive.ObjectID `json:"signalId" bson:"signalId,omitempty" index:"single:1;compound:signal_external_unique"`

	// ExternalID là idempotency key do producer gửi; sparse unique theo signal
	ExternalID string `json:"externalId" bson:"externalId,omitempty" index:"compound:signal_external_unique"`

	Raw         map[string]interface{} `json:"raw" bson:"raw,omitempty"`
	Fingerprint string                 `json:"fingerprint" bson:"fingerprint,omitempty" index:"single:1"`
	EntityIDs   []primitive.ObjectID   `json:"entityIds" bson:"entityIds,omitempty"`

	// FilterActionTaken: none | snooze | deduplicate.
	// snooze ⇒ CaseID rỗng; deduplicate ⇒ CaseID trỏ về case mở còn sống.
	FilterActionTaken string             `json:"filterActionTaken" bson:"filterActionTaken,omitempty"`
	CaseID            primitive.ObjectID `json:"caseId" bson:"caseId,omitempty" index:"single:1"`

	// Degraded đánh dấu enrich/extract thất bại; worker sẽ reprocess
	Degraded bool `json:"degraded" bson:"degraded"`

	// NeedsCaseAttach đánh dấu bước gắn case thất bại sau khi đã persist; worker retry
	NeedsCaseAttach bool `json:"needsCaseAttach" bson:"needsCaseAttach"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// SignalDedupeKey là hàng khóa cho mỗi (signal, fingerprint) đang trong cửa sổ dedupe.
// Ingest đồng thời trên cùng fingerprint serialize qua optimistic lock trên Version.
type SignalDedupeKey struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID   primitive.ObjectID `json:"projectId" bson:"projectId,omitempty"`
	SignalID    primitive.ObjectID `json:"signalId" bson:"signalId,omitempty" index:"compound:signal_fingerprint_unique"`
	Fingerprint string             `json:"fingerprint" bson:"fingerprint,omitempty" index:"compound:signal_fingerprint_unique"`

	CaseID        primitive.ObjectID `json:"caseId" bson:"caseId,omitempty"`
	InstanceUID   string             `json:"instanceUid" bson:"instanceUid,omitempty"`
	LastSeenAt    int64              `json:"lastSeenAt" bson:"lastSeenAt,omitempty"`
	WindowSeconds int64              `json:"windowSeconds" bson:"windowSeconds,omitempty"`
	Version       int64              `json:"version" bson:"version"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
