package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phạm vi áp dụng của một EntityType
const (
	EntityScopeSignal = "signal" // Chỉ áp dụng cho signal được gắn
	EntityScopeAll    = "all"    // Áp dụng cho mọi signal trong project
)

// EntityType là quy tắc trích xuất một loại dữ liệu (host, user, ip...) từ raw payload:
// JSON-path chọn giá trị, regex (tùy chọn) lọc/bắt nhóm.
type EntityType struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:entities,field:entityTypeId,message:Entity type đang có entity"`

	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID   primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_entity_type_name_unique"`
	Name        string             `json:"name" bson:"name,omitempty" index:"compound:project_entity_type_name_unique"`
	Description string             `json:"description" bson:"description,omitempty"`

	Field             string `json:"field" bson:"field,omitempty"` // JSON-path vào raw payload
	RegularExpression string `json:"regularExpression" bson:"regularExpression,omitempty"`
	Global            bool   `json:"global" bson:"global"`
	Enabled           bool   `json:"enabled" bson:"enabled"`
	Scope             string `json:"scope" bson:"scope,omitempty"` // signal | all

	// SignalID gắn type với một signal cụ thể khi scope=signal
	SignalID primitive.ObjectID `json:"signalId" bson:"signalId,omitempty" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// Entity là một giá trị đã trích xuất; (project, entityType, value) duy nhất,
// tạo lazy lúc extract và chia sẻ giữa các signal instance.
type Entity struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID    primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_entity_value_unique"`
	EntityTypeID primitive.ObjectID `json:"entityTypeId" bson:"entityTypeId,omitempty" index:"compound:project_entity_value_unique"`
	Value        string             `json:"value" bson:"value,omitempty" index:"compound:project_entity_value_unique"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}
