// Package models - AccessToken dùng cho service-to-service ingest.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessToken là token tĩnh cấp cho hệ thống nguồn để gọi /signal/ingest.
// Token chỉ hiển thị plaintext một lần lúc tạo; trong DB lưu hash SHA-256.
type AccessToken struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId" index:"single:1"`
	Name      string             `json:"name" bson:"name"`
	TokenHash string             `json:"-" bson:"tokenHash" index:"unique"`
	ExpiresAt int64              `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"` // UnixMilli, 0 = không hết hạn
	LastUsed  int64              `json:"lastUsed,omitempty" bson:"lastUsed,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}
