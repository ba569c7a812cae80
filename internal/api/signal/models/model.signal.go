package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DuplicationRule chỉ định cách tính fingerprint và cửa sổ dedupe của một signal.
// TagTypes là danh sách tên entity type dùng để tính fingerprint; rỗng thì
// fingerprint rơi về sha1 của canonical JSON toàn bộ raw payload.
type DuplicationRule struct {
	TagTypes      []string `json:"tagTypes" bson:"tagTypes,omitempty"`
	WindowSeconds int64    `json:"windowSeconds" bson:"windowSeconds,omitempty"`
}

// DefaultDedupeWindowSeconds là cửa sổ dedupe khi rule không chỉ định
const DefaultDedupeWindowSeconds int64 = 3600

// Window trả về cửa sổ dedupe hiệu lực (giây)
func (r *DuplicationRule) Window() int64 {
	if r == nil || r.WindowSeconds <= 0 {
		return DefaultDedupeWindowSeconds
	}
	return r.WindowSeconds
}

// Signal là định nghĩa một loại detection được giám sát.
// (project, variant) là duy nhất; các giá trị mặc định cho case được kế thừa khi ingest.
type Signal struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:signal_instances,field:signalId,message:Signal đang có instance|collection:signal_filters,field:signalId,message:Signal đang có filter"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_variant_unique"`
	Name      string             `json:"name" bson:"name,omitempty"`
	Variant   string             `json:"variant" bson:"variant,omitempty" index:"compound:project_variant_unique"`
	SourceRef string             `json:"sourceRef" bson:"sourceRef,omitempty"`
	Enabled   bool               `json:"enabled" bson:"enabled"`

	// Giá trị mặc định cho case được tạo từ signal này
	CaseTypeDefault     primitive.ObjectID `json:"caseTypeDefault" bson:"caseTypeDefault,omitempty"`
	CasePriorityDefault primitive.ObjectID `json:"casePriorityDefault" bson:"casePriorityDefault,omitempty"`
	CaseSeverityDefault primitive.ObjectID `json:"caseSeverityDefault" bson:"caseSeverityDefault,omitempty"`

	OncallServiceRef         string `json:"oncallServiceRef" bson:"oncallServiceRef,omitempty"`
	ConversationTarget       string `json:"conversationTarget" bson:"conversationTarget,omitempty"`
	WorkflowInstanceTemplate string `json:"workflowInstanceTemplate" bson:"workflowInstanceTemplate,omitempty"`
	ExternalURL              string `json:"externalUrl" bson:"externalUrl,omitempty"`

	DuplicationRule *DuplicationRule `json:"duplicationRule" bson:"duplicationRule,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
