// Package costdto chứa các input struct cho domain cost.
package costdto

import (
	models "meta_response/internal/api/cost/models"
)

// PluginEventCreateInput là dữ liệu tạo mới plugin event
type PluginEventCreateInput struct {
	Slug        string `json:"slug" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Enabled     bool   `json:"enabled"`
}

// PluginEventUpdateInput là dữ liệu cập nhật plugin event
type PluginEventUpdateInput struct {
	Description string `json:"description" validate:"omitempty,max=500"`
	Enabled     bool   `json:"enabled"`
}

// CostModelCreateInput là dữ liệu tạo mới cost model
type CostModelCreateInput struct {
	Name       string                     `json:"name" validate:"required,min=1,max=100,no_xss"`
	Enabled    bool                       `json:"enabled"`
	Activities []models.CostModelActivity `json:"activities"`
}

// CostModelUpdateInput là dữ liệu cập nhật cost model
type CostModelUpdateInput struct {
	Name       string                     `json:"name" validate:"omitempty,min=1,max=100,no_xss"`
	Enabled    bool                       `json:"enabled"`
	Activities []models.CostModelActivity `json:"activities"`
}

// ActivityRecordInput là payload ghi nhận một span hoạt động.
// Đúng một trong CaseID/IncidentID phải được set.
type ActivityRecordInput struct {
	UserID      string `json:"userId" validate:"required"`
	CaseID      string `json:"caseId"`
	IncidentID  string `json:"incidentId"`
	PluginEvent string `json:"pluginEvent" validate:"required"`
	StartedAt   int64  `json:"startedAt" validate:"required,gt=0"`
	EndedAt     int64  `json:"endedAt" validate:"required,gt=0"`
}
