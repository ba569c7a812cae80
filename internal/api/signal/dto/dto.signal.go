// Package signaldto chứa các input struct cho domain signal.
package signaldto

import (
	models "meta_response/internal/api/signal/models"
)

// SignalCreateInput là dữ liệu tạo mới signal
type SignalCreateInput struct {
	Name                     string                  `json:"name" validate:"required,min=2,max=200,no_xss"`
	Variant                  string                  `json:"variant" validate:"required,min=2,max=200"`
	SourceRef                string                  `json:"sourceRef"`
	Enabled                  bool                    `json:"enabled"`
	CaseTypeDefault          string                  `json:"caseTypeDefault"`
	CasePriorityDefault      string                  `json:"casePriorityDefault"`
	CaseSeverityDefault      string                  `json:"caseSeverityDefault"`
	OncallServiceRef         string                  `json:"oncallServiceRef"`
	ConversationTarget       string                  `json:"conversationTarget"`
	WorkflowInstanceTemplate string                  `json:"workflowInstanceTemplate"`
	ExternalURL              string                  `json:"externalUrl" validate:"omitempty,url"`
	DuplicationRule          *models.DuplicationRule `json:"duplicationRule"`
}

// SignalUpdateInput là dữ liệu cập nhật signal
type SignalUpdateInput struct {
	Name                     string                  `json:"name" validate:"omitempty,min=2,max=200,no_xss"`
	SourceRef                string                  `json:"sourceRef"`
	Enabled                  bool                    `json:"enabled"`
	CaseTypeDefault          string                  `json:"caseTypeDefault"`
	CasePriorityDefault      string                  `json:"casePriorityDefault"`
	CaseSeverityDefault      string                  `json:"caseSeverityDefault"`
	OncallServiceRef         string                  `json:"oncallServiceRef"`
	ConversationTarget       string                  `json:"conversationTarget"`
	WorkflowInstanceTemplate string                  `json:"workflowInstanceTemplate"`
	ExternalURL              string                  `json:"externalUrl" validate:"omitempty,url"`
	DuplicationRule          *models.DuplicationRule `json:"duplicationRule"`
}

// EntityTypeCreateInput là dữ liệu tạo mới entity type
type EntityTypeCreateInput struct {
	Name              string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Description       string `json:"description" validate:"omitempty,max=500"`
	Field             string `json:"field"`
	RegularExpression string `json:"regularExpression"`
	Global            bool   `json:"global"`
	Enabled           bool   `json:"enabled"`
	Scope             string `json:"scope" validate:"required,oneof=signal all"`
	SignalID          string `json:"signalId"`
}

// EntityTypeUpdateInput là dữ liệu cập nhật entity type
type EntityTypeUpdateInput struct {
	Name              string `json:"name" validate:"omitempty,min=1,max=100,no_xss"`
	Description       string `json:"description" validate:"omitempty,max=500"`
	Field             string `json:"field"`
	RegularExpression string `json:"regularExpression"`
	Global            bool   `json:"global"`
	Enabled           bool   `json:"enabled"`
	Scope             string `json:"scope" validate:"omitempty,oneof=signal all"`
}

// SignalFilterCreateInput là dữ liệu tạo mới filter; Expression là cây JSON thô
type SignalFilterCreateInput struct {
	SignalID      string                 `json:"signalId" validate:"required"`
	Name          string                 `json:"name" validate:"required,min=2,max=200,no_xss"`
	Expression    map[string]interface{} `json:"expression" validate:"required"`
	Mode          string                 `json:"mode" validate:"required,oneof=active monitor inactive"`
	Action        string                 `json:"action" validate:"required,oneof=snooze deduplicate none"`
	WindowSeconds int64                  `json:"windowSeconds" validate:"omitempty,gte=0"`
	Expiration    int64                  `json:"expiration" validate:"omitempty,gte=0"`
}

// SignalFilterUpdateInput là dữ liệu cập nhật filter
type SignalFilterUpdateInput struct {
	Name          string                 `json:"name" validate:"omitempty,min=2,max=200,no_xss"`
	Expression    map[string]interface{} `json:"expression"`
	Mode          string                 `json:"mode" validate:"omitempty,oneof=active monitor inactive"`
	Action        string                 `json:"action" validate:"omitempty,oneof=snooze deduplicate none"`
	WindowSeconds int64                  `json:"windowSeconds" validate:"omitempty,gte=0"`
	Expiration    int64                  `json:"expiration" validate:"omitempty,gte=0"`
}

// IngestInput là payload của một lần ingest signal instance.
// SignalRef nhận variant hoặc hex ObjectID của signal.
type IngestInput struct {
	SignalRef  string                 `json:"signal" validate:"required"`
	Raw        map[string]interface{} `json:"raw" validate:"required"`
	ExternalID string                 `json:"externalId"`
	CreatedAt  int64                  `json:"createdAt" validate:"omitempty,gte=0"`
}
