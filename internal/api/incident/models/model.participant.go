package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các role trong một case/incident
const (
	RoleCommander   = "commander"
	RoleAssignee    = "assignee"
	RoleScribe      = "scribe"
	RoleLiaison     = "liaison"
	RoleReporter    = "reporter"
	RoleParticipant = "participant"
	RoleObserver    = "observer"
)

// ParticipantRole là một khoảng thời gian giữ role; RenouncedAt 0 nghĩa là đang giữ
type ParticipantRole struct {
	Role        string `json:"role" bson:"role,omitempty"`
	AssumedAt   int64  `json:"assumedAt" bson:"assumedAt,omitempty"`
	RenouncedAt int64  `json:"renouncedAt" bson:"renouncedAt,omitempty"`
}

// Participant gắn một cá nhân với một case XOR incident, kèm lịch sử role.
// Một participant có thể giữ nhiều role đồng thời.
type Participant struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId,omitempty" index:"single:1"`

	// Đúng một trong hai được set (subject = case | incident)
	CaseID     primitive.ObjectID `json:"caseId" bson:"caseId,omitempty" index:"single:1"`
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty" index:"single:1"`

	Roles []ParticipantRole `json:"roles" bson:"roles,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// ActiveRoles trả về các role đang giữ (chưa renounce)
func (p *Participant) ActiveRoles() []string {
	var active []string
	for _, role := range p.Roles {
		if role.RenouncedAt == 0 {
			active = append(active, role.Role)
		}
	}
	return active
}

// IncidentRole là policy khai báo: (role, điều kiện lọc) → service hoặc cá nhân.
// Resolver chọn policy khớp nhất theo thứ tự ưu tiên rồi Order thấp nhất.
type IncidentRole struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	Role    string `json:"role" bson:"role,omitempty" index:"single:1"`
	Enabled bool   `json:"enabled" bson:"enabled"`
	Order   int    `json:"order" bson:"order,omitempty"`

	// Điều kiện lọc; danh sách rỗng nghĩa là không ràng buộc chiều đó
	IncidentTypeIDs     []primitive.ObjectID `json:"incidentTypeIds" bson:"incidentTypeIds,omitempty"`
	IncidentPriorityIDs []primitive.ObjectID `json:"incidentPriorityIds" bson:"incidentPriorityIds,omitempty"`
	TagIDs              []primitive.ObjectID `json:"tagIds" bson:"tagIds,omitempty"`

	// Đích: oncall service hoặc cá nhân cụ thể
	ServiceRef       string             `json:"serviceRef" bson:"serviceRef,omitempty"`
	IndividualID     primitive.ObjectID `json:"individualId" bson:"individualId,omitempty"`
	EngageNextOncall bool               `json:"engageNextOncall" bson:"engageNextOncall"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
