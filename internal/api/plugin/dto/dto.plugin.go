// Package plugindto chứa các input struct cho domain plugin.
package plugindto

// PluginInstanceCreateInput là dữ liệu tạo mới một plugin instance.
// Config là map cấu hình thô (endpoint, secret, headers); service mã hóa trước khi lưu.
type PluginInstanceCreateInput struct {
	Capability string                 `json:"capability" validate:"required"`
	Name       string                 `json:"name" validate:"required,min=2,max=100,no_xss"`
	Enabled    bool                   `json:"enabled"`
	Config     map[string]interface{} `json:"config" validate:"required"`
}

// PluginInstanceUpdateInput là dữ liệu cập nhật plugin instance.
// Config nil nghĩa là giữ nguyên cấu hình hiện tại.
type PluginInstanceUpdateInput struct {
	Name   string                 `json:"name" validate:"omitempty,min=2,max=100,no_xss"`
	Config map[string]interface{} `json:"config"`
}
