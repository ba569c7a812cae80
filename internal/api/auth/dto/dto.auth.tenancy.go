package authdto

// OrganizationCreateInput đầu vào tạo tổ chức.
type OrganizationCreateInput struct {
	Name      string `json:"name" validate:"required"`
	Slug      string `json:"slug" validate:"required,lowercase"`
	IsDefault bool   `json:"isDefault"`
}

// OrganizationUpdateInput đầu vào cập nhật tổ chức.
type OrganizationUpdateInput struct {
	Name      string `json:"name"`
	Slug      string `json:"slug" validate:"omitempty,lowercase"`
	IsDefault bool   `json:"isDefault"`
}

// ProjectCreateInput đầu vào tạo project.
type ProjectCreateInput struct {
	OrganizationID          string  `json:"organizationId" validate:"required"`
	Name                    string  `json:"name" validate:"required"`
	Enabled                 bool    `json:"enabled"`
	AnnualEmployeeCost      float64 `json:"annualEmployeeCost" validate:"omitempty,gt=0"`
	BusinessYearHours       float64 `json:"businessYearHours" validate:"omitempty,gt=0"`
	RequireIncidentFeedback bool    `json:"requireIncidentFeedback"`
	RestrictedByDefault     bool    `json:"restrictedByDefault"`
}

// ProjectUpdateInput đầu vào cập nhật project.
type ProjectUpdateInput struct {
	Name                    string  `json:"name"`
	Enabled                 bool    `json:"enabled"`
	AnnualEmployeeCost      float64 `json:"annualEmployeeCost" validate:"omitempty,gt=0"`
	BusinessYearHours       float64 `json:"businessYearHours" validate:"omitempty,gt=0"`
	RequireIncidentFeedback bool    `json:"requireIncidentFeedback"`
	RestrictedByDefault     bool    `json:"restrictedByDefault"`
}

// AccessTokenCreateInput đầu vào cấp access token cho hệ thống nguồn.
type AccessTokenCreateInput struct {
	ProjectID string `json:"projectId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	ExpiresAt int64  `json:"expiresAt" validate:"omitempty,gt=0"` // UnixMilli
}
