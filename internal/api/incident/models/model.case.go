package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của Case
const (
	CaseStatusNew       = "new"
	CaseStatusTriage    = "triage"
	CaseStatusEscalated = "escalated" // Đã promote thành incident
	CaseStatusClosed    = "closed"
)

// Trạng thái của Incident
const (
	IncidentStatusActive = "active"
	IncidentStatusStable = "stable"
	IncidentStatusClosed = "closed"
)

// Visibility của case/incident
const (
	VisibilityOpen       = "open"
	VisibilityRestricted = "restricted"
)

// Case là bản ghi điều tra nhẹ, có thể escalate thành Incident.
// Name là id ticket bên ngoài sau khi được cấp.
type Case struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:participants,field:caseId,message:Case đang có participant"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	Name        string `json:"name" bson:"name,omitempty"`
	Title       string `json:"title" bson:"title,omitempty"`
	Description string `json:"description" bson:"description,omitempty"`
	Status      string `json:"status" bson:"status,omitempty" index:"single:1"`
	Visibility  string `json:"visibility" bson:"visibility,omitempty"`

	TypeID     primitive.ObjectID `json:"typeId" bson:"typeId,omitempty"`
	PriorityID primitive.ObjectID `json:"priorityId" bson:"priorityId,omitempty"`
	SeverityID primitive.ObjectID `json:"severityId" bson:"severityId,omitempty"`

	AssigneeID primitive.ObjectID `json:"assigneeId" bson:"assigneeId,omitempty"`
	ReporterID primitive.ObjectID `json:"reporterId" bson:"reporterId,omitempty"`

	// Fingerprint của signal instance tạo ra case; dùng cho attach-by-fingerprint
	Fingerprint string `json:"fingerprint" bson:"fingerprint,omitempty" index:"single:1"`

	// IncidentID trỏ tới incident khi case đã escalate
	IncidentID primitive.ObjectID `json:"incidentId" bson:"incidentId,omitempty"`

	ReportedAt int64 `json:"reportedAt" bson:"reportedAt,omitempty"`
	TriageAt   int64 `json:"triageAt" bson:"triageAt,omitempty"`
	ClosedAt   int64 `json:"closedAt" bson:"closedAt,omitempty"`

	Resolution       string `json:"resolution" bson:"resolution,omitempty"`
	ResolutionReason string `json:"resolutionReason" bson:"resolutionReason,omitempty"`

	TicketRef        string               `json:"ticketRef" bson:"ticketRef,omitempty"`
	TicketWeblink    string               `json:"ticketWeblink" bson:"ticketWeblink,omitempty"`
	ConversationRef  string               `json:"conversationRef" bson:"conversationRef,omitempty"`
	StorageRef       string               `json:"storageRef" bson:"storageRef,omitempty"`
	DocumentRefs     []string             `json:"documentRefs" bson:"documentRefs,omitempty"`
	DedicatedChannel bool                 `json:"dedicatedChannel" bson:"dedicatedChannel"`
	TagIDs           []primitive.ObjectID `json:"tagIds" bson:"tagIds,omitempty"`

	CostModelID primitive.ObjectID `json:"costModelId" bson:"costModelId,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// Incident là bản ghi ứng phó đầy đủ với role, chi phí và tài nguyên ngoài
type Incident struct {
	_Relationships struct{} `json:"-" bson:"-" relationship:"collection:participants,field:incidentId,message:Incident đang có participant"`

	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId,omitempty" index:"single:1"`

	Name        string `json:"name" bson:"name,omitempty"`
	Title       string `json:"title" bson:"title,omitempty"`
	Description string `json:"description" bson:"description,omitempty"`
	Status      string `json:"status" bson:"status,omitempty" index:"single:1"`
	Visibility  string `json:"visibility" bson:"visibility,omitempty"`

	TypeID     primitive.ObjectID `json:"typeId" bson:"typeId,omitempty"`
	PriorityID primitive.ObjectID `json:"priorityId" bson:"priorityId,omitempty"`
	SeverityID primitive.ObjectID `json:"severityId" bson:"severityId,omitempty"`

	CommanderID primitive.ObjectID `json:"commanderId" bson:"commanderId,omitempty"`
	ReporterID  primitive.ObjectID `json:"reporterId" bson:"reporterId,omitempty"`

	// CaseID trỏ về case gốc khi incident sinh ra từ escalate
	CaseID primitive.ObjectID `json:"caseId" bson:"caseId,omitempty"`

	ReportedAt int64 `json:"reportedAt" bson:"reportedAt,omitempty"`
	StableAt   int64 `json:"stableAt" bson:"stableAt,omitempty"`
	ClosedAt   int64 `json:"closedAt" bson:"closedAt,omitempty"`

	Resolution       string `json:"resolution" bson:"resolution,omitempty"`
	ResolutionReason string `json:"resolutionReason" bson:"resolutionReason,omitempty"`

	TicketRef        string               `json:"ticketRef" bson:"ticketRef,omitempty"`
	TicketWeblink    string               `json:"ticketWeblink" bson:"ticketWeblink,omitempty"`
	ConversationRef  string               `json:"conversationRef" bson:"conversationRef,omitempty"`
	StorageRef       string               `json:"storageRef" bson:"storageRef,omitempty"`
	ConferenceRef    string               `json:"conferenceRef" bson:"conferenceRef,omitempty"`
	DocumentRefs     []string             `json:"documentRefs" bson:"documentRefs,omitempty"`
	DedicatedChannel bool                 `json:"dedicatedChannel" bson:"dedicatedChannel"`
	TagIDs           []primitive.ObjectID `json:"tagIds" bson:"tagIds,omitempty"`

	CostModelID primitive.ObjectID `json:"costModelId" bson:"costModelId,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt,omitempty"`
}
