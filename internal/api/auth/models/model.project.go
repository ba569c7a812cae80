// Package models - Project thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CostModelType các loại model tính chi phí của project
const (
	CostModelTypeActivity = "activity" // Theo activity span có trọng số
	CostModelTypeClassic  = "classic"  // Theo role multiplier cổ điển
)

// Project là phạm vi làm việc chính: mọi signal, case, incident, plugin
// instance và chi phí đều thuộc về một project.
type Project struct {
	_Relationships struct{}           `relationship:"collection:signals,field:projectId,message:Không thể xóa project vì có %d signal trực thuộc.|collection:cases,field:projectId,message:Không thể xóa project vì có %d case trực thuộc."`
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1;compound:org_project_name_unique"`
	Name           string             `json:"name" bson:"name" index:"compound:org_project_name_unique"`
	Enabled        bool               `json:"enabled" bson:"enabled" index:"single:1"`

	// Tham số cho cost engine
	AnnualEmployeeCost float64 `json:"annualEmployeeCost" bson:"annualEmployeeCost"` // Chi phí nhân sự trung bình mỗi năm
	BusinessYearHours  float64 `json:"businessYearHours" bson:"businessYearHours"`   // Số giờ làm việc mỗi năm (vd 2080)

	// Behaviour flags
	RequireIncidentFeedback bool `json:"requireIncidentFeedback" bson:"requireIncidentFeedback"` // Gửi nhắc feedback sau incident
	RestrictedByDefault     bool `json:"restrictedByDefault" bson:"restrictedByDefault"`         // Case/incident mới mặc định restricted

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
