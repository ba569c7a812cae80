// Package models - Organization thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization là đơn vị tenancy cấp cao nhất, chứa nhiều project.
type Organization struct {
	_Relationships struct{}           `relationship:"collection:projects,field:organizationId,message:Không thể xóa tổ chức vì có %d project trực thuộc. Vui lòng xóa các project trước."`
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" index:"unique"`
	Slug           string             `json:"slug" bson:"slug" index:"unique"`
	IsDefault      bool               `json:"isDefault" bson:"isDefault" index:"single:1"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
}
