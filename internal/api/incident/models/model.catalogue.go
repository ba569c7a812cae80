package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseType phân loại case (Phishing, Malware...); (project, name) duy nhất
type CaseType struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:cases,field:typeId,message:Case type đang được sử dụng"`

	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID   primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_case_type_name_unique"`
	Name        string             `json:"name" bson:"name,omitempty" index:"compound:project_case_type_name_unique"`
	Description string             `json:"description" bson:"description,omitempty"`
	// Restricted đánh dấu mọi case thuộc type này mặc định visibility=restricted
	Restricted bool  `json:"restricted" bson:"restricted"`
	CreatedAt  int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt  int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// CasePriority là mức ưu tiên của case; Rank nhỏ hơn nghĩa là khẩn hơn
type CasePriority struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:cases,field:priorityId,message:Case priority đang được sử dụng"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_case_priority_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_case_priority_name_unique"`
	Rank      int                `json:"rank" bson:"rank,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// CaseSeverity là mức nghiêm trọng của case
type CaseSeverity struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:cases,field:severityId,message:Case severity đang được sử dụng"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_case_severity_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_case_severity_name_unique"`
	Rank      int                `json:"rank" bson:"rank,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// IncidentType phân loại incident
type IncidentType struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:incidents,field:typeId,message:Incident type đang được sử dụng"`

	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID   primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_incident_type_name_unique"`
	Name        string             `json:"name" bson:"name,omitempty" index:"compound:project_incident_type_name_unique"`
	Description string             `json:"description" bson:"description,omitempty"`
	Restricted  bool               `json:"restricted" bson:"restricted"`
	CreatedAt   int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt   int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// IncidentPriority là mức ưu tiên của incident
type IncidentPriority struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:incidents,field:priorityId,message:Incident priority đang được sử dụng"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_incident_priority_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_incident_priority_name_unique"`
	Rank      int                `json:"rank" bson:"rank,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// IncidentSeverity là mức nghiêm trọng của incident
type IncidentSeverity struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:incidents,field:severityId,message:Incident severity đang được sử dụng"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_incident_severity_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_incident_severity_name_unique"`
	Rank      int                `json:"rank" bson:"rank,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// Tag là nhãn gắn lên case/incident; (project, name) duy nhất
type Tag struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1;compound:project_tag_name_unique"`
	Name      string             `json:"name" bson:"name,omitempty" index:"compound:project_tag_name_unique"`
	Color     string             `json:"color" bson:"color,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt,omitempty"`
}
