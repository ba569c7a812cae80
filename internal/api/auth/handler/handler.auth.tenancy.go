package authhdl

import (
	"fmt"

	authdto "meta_response/internal/api/auth/dto"
	models "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	basehdl "meta_response/internal/api/base/handler"
)

// OrganizationHandler xử lý CRUD tổ chức
type OrganizationHandler struct {
	*basehdl.BaseHandler[models.Organization, authdto.OrganizationCreateInput, authdto.OrganizationUpdateInput]
	organizationService *authsvc.OrganizationService
}

// NewOrganizationHandler tạo instance mới của OrganizationHandler
func NewOrganizationHandler() (*OrganizationHandler, error) {
	service, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}
	return &OrganizationHandler{
		BaseHandler:         basehdl.NewBaseHandler[models.Organization, authdto.OrganizationCreateInput, authdto.OrganizationUpdateInput](service),
		organizationService: service,
	}, nil
}

// ProjectHandler xử lý CRUD project
type ProjectHandler struct {
	*basehdl.BaseHandler[models.Project, authdto.ProjectCreateInput, authdto.ProjectUpdateInput]
	projectService *authsvc.ProjectService
}

// NewProjectHandler tạo instance mới của ProjectHandler
func NewProjectHandler() (*ProjectHandler, error) {
	service, err := authsvc.NewProjectService()
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %v", err)
	}
	return &ProjectHandler{
		BaseHandler:    basehdl.NewBaseHandler[models.Project, authdto.ProjectCreateInput, authdto.ProjectUpdateInput](service),
		projectService: service,
	}, nil
}
