package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PluginInstance là một cấu hình plugin của project cho một capability.
// Config được mã hóa AES-256-GCM trước khi lưu, không bao giờ trả về client.
// Tối đa một instance enabled cho mỗi (project, capability); service đảm bảo
// bằng cách tắt các instance anh em khi bật một instance.
type PluginInstance struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID  primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_capability"`
	Capability string             `json:"capability" bson:"capability,omitempty" index:"compound:project_capability"`
	Name       string             `json:"name" bson:"name,omitempty"`
	Enabled    bool               `json:"enabled" bson:"enabled"`
	Config     string             `json:"-" bson:"config,omitempty"` // Blob mã hóa base64(nonce || ciphertext)
	CreatedAt  int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt  int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}
