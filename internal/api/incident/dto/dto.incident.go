// Package incidentdto chứa các input struct cho domain case/incident.
package incidentdto

// CatalogueCreateInput dùng chung cho type/priority/severity của case và incident
type CatalogueCreateInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Restricted  bool   `json:"restricted"`
	Rank        int    `json:"rank" validate:"omitempty,gte=0"`
}

// CatalogueUpdateInput là dữ liệu cập nhật một mục catalogue
type CatalogueUpdateInput struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=100,no_xss"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Restricted  bool   `json:"restricted"`
	Rank        int    `json:"rank" validate:"omitempty,gte=0"`
}

// TagCreateInput là dữ liệu tạo mới tag
type TagCreateInput struct {
	Name  string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Color string `json:"color" validate:"omitempty,max=20"`
}

// TagUpdateInput là dữ liệu cập nhật tag
type TagUpdateInput struct {
	Name  string `json:"name" validate:"omitempty,min=1,max=100,no_xss"`
	Color string `json:"color" validate:"omitempty,max=20"`
}

// CaseCreateInput là dữ liệu khai báo case thủ công
type CaseCreateInput struct {
	Title            string   `json:"title" validate:"required,min=2,max=300,no_xss"`
	Description      string   `json:"description" validate:"omitempty,max=5000"`
	Visibility       string   `json:"visibility" validate:"omitempty,oneof=open restricted"`
	TypeID           string   `json:"typeId"`
	PriorityID       string   `json:"priorityId"`
	SeverityID       string   `json:"severityId"`
	DedicatedChannel bool     `json:"dedicatedChannel"`
	TagIDs           []string `json:"tagIds"`
}

// CaseUpdateInput là dữ liệu cập nhật nội dung case (không đổi trạng thái)
type CaseUpdateInput struct {
	Title       string   `json:"title" validate:"omitempty,min=2,max=300,no_xss"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	TypeID      string   `json:"typeId"`
	PriorityID  string   `json:"priorityId"`
	SeverityID  string   `json:"severityId"`
	TagIDs      []string `json:"tagIds"`
}

// TransitionInput là dữ liệu chuyển trạng thái case/incident.
// Resolution và ResolutionReason bắt buộc khi chuyển sang closed.
type TransitionInput struct {
	Status           string `json:"status" validate:"required"`
	Resolution       string `json:"resolution" validate:"omitempty,max=5000"`
	ResolutionReason string `json:"resolutionReason" validate:"omitempty,max=500"`
}

// RoleAssignInput là dữ liệu gán role cho một user
type RoleAssignInput struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=commander assignee scribe liaison reporter participant observer"`
}

// EscalateInput là dữ liệu escalate case thành incident. Phân loại thuộc
// catalogue incident nên bắt buộc nhập lại, không suy từ catalogue case.
type EscalateInput struct {
	TypeID      string `json:"typeId" validate:"required"`
	PriorityID  string `json:"priorityId" validate:"required"`
	SeverityID  string `json:"severityId"`
	Title       string `json:"title" validate:"omitempty,min=2,max=300,no_xss"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// IncidentDeclareInput là dữ liệu khai báo incident trực tiếp
type IncidentDeclareInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=300,no_xss"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Visibility  string   `json:"visibility" validate:"omitempty,oneof=open restricted"`
	TypeID      string   `json:"typeId" validate:"required"`
	PriorityID  string   `json:"priorityId" validate:"required"`
	SeverityID  string   `json:"severityId"`
	TagIDs      []string `json:"tagIds"`
}

// IncidentUpdateInput là dữ liệu cập nhật nội dung incident
type IncidentUpdateInput struct {
	Title       string   `json:"title" validate:"omitempty,min=2,max=300,no_xss"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	TypeID      string   `json:"typeId"`
	PriorityID  string   `json:"priorityId"`
	SeverityID  string   `json:"severityId"`
	TagIDs      []string `json:"tagIds"`
}

// IncidentRoleCreateInput là dữ liệu tạo policy phân giải role
type IncidentRoleCreateInput struct {
	Role                string   `json:"role" validate:"required,oneof=commander assignee scribe liaison reporter participant observer"`
	Enabled             bool     `json:"enabled"`
	Order               int      `json:"order" validate:"omitempty,gte=0"`
	IncidentTypeIDs     []string `json:"incidentTypeIds"`
	IncidentPriorityIDs []string `json:"incidentPriorityIds"`
	TagIDs              []string `json:"tagIds"`
	ServiceRef          string   `json:"serviceRef"`
	IndividualID        string   `json:"individualId"`
	EngageNextOncall    bool     `json:"engageNextOncall"`
}

// IncidentRoleUpdateInput là dữ liệu cập nhật policy phân giải role
type IncidentRoleUpdateInput struct {
	Enabled             bool     `json:"enabled"`
	Order               int      `json:"order" validate:"omitempty,gte=0"`
	IncidentTypeIDs     []string `json:"incidentTypeIds"`
	IncidentPriorityIDs []string `json:"incidentPriorityIds"`
	TagIDs              []string `json:"tagIds"`
	ServiceRef          string   `json:"serviceRef"`
	IndividualID        string   `json:"individualId"`
	EngageNextOncall    bool     `json:"engageNextOncall"`
}

// FeedbackSubmitInput là phản hồi sau incident của một participant
type FeedbackSubmitInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=5000"`
}
