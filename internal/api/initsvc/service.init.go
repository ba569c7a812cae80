// Package initsvc chứa InitService dùng để khởi tạo dữ liệu ban đầu khi server
// chạy với INITMODE. Tách ra package riêng để tránh import cycle giữa các domain.
// Mọi bước seed đều idempotent: chạy lại không tạo bản ghi trùng.
package initsvc

import (
	"context"
	"errors"

	authmodels "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	costmodels "meta_response/internal/api/cost/models"
	costsvc "meta_response/internal/api/cost/service"
	incidentmodels "meta_response/internal/api/incident/models"
	incidentsvc "meta_response/internal/api/incident/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// InitService gom các bước seed dữ liệu mặc định
type InitService struct {
	users              *authsvc.UserService
	organizations      *authsvc.OrganizationService
	projects           *authsvc.ProjectService
	casePriorities     *incidentsvc.CasePriorityService
	caseSeverities     *incidentsvc.CaseSeverityService
	incidentPriorities *incidentsvc.IncidentPriorityService
	incidentSeverities *incidentsvc.IncidentSeverityService
	pluginEvents       *costsvc.PluginEventService
}

// NewInitService tạo mới InitService
func NewInitService() (*InitService, error) {
	users, err := authsvc.NewUserService()
	if err != nil {
		return nil, err
	}
	organizations, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, err
	}
	projects, err := authsvc.NewProjectService()
	if err != nil {
		return nil, err
	}
	casePriorities, err := incidentsvc.NewCasePriorityService()
	if err != nil {
		return nil, err
	}
	caseSeverities, err := incidentsvc.NewCaseSeverityService()
	if err != nil {
		return nil, err
	}
	incidentPriorities, err := incidentsvc.NewIncidentPriorityService()
	if err != nil {
		return nil, err
	}
	incidentSeverities, err := incidentsvc.NewIncidentSeverityService()
	if err != nil {
		return nil, err
	}
	pluginEvents, err := costsvc.NewPluginEventService()
	if err != nil {
		return nil, err
	}
	return &InitService{
		users:              users,
		organizations:      organizations,
		projects:           projects,
		casePriorities:     casePriorities,
		caseSeverities:     caseSeverities,
		incidentPriorities: incidentPriorities,
		incidentSeverities: incidentSeverities,
		pluginEvents:       pluginEvents,
	}, nil
}

// InitDefaults chạy toàn bộ chuỗi seed: tổ chức, project, admin, catalogue
func (s *InitService) InitDefaults(ctx context.Context) error {
	org, err := s.organizations.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	project, err := s.projects.EnsureDefault(ctx, org.ID)
	if err != nil {
		return err
	}

	if err := s.InitAdminUser(ctx); err != nil {
		return err
	}
	if err := s.InitCatalogues(ctx, project.ID); err != nil {
		return err
	}
	return s.InitPluginEvents(ctx, project.ID)
}

// InitAdminUser tạo tài khoản admin từ env nếu chưa có.
// Không set ADMIN_EMAIL thì bỏ qua, admin được tạo qua API đăng ký.
func (s *InitService) InitAdminUser(ctx context.Context) error {
	cfg := global.ServerConfig
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.GetAppLogger().Info("🔄 [INIT] ADMIN_EMAIL chưa set, bỏ qua seed admin")
		return nil
	}

	_, err := s.users.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.InsertOne(ctx, authmodels.User{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Password: string(hashed),
		Tokens:   []authmodels.DeviceToken{},
	})
	if err != nil && !errors.Is(err, common.ErrDuplicate) {
		return err
	}
	logger.GetAppLogger().WithField("email", cfg.AdminEmail).Info("✅ [INIT] Đã tạo admin user")
	return nil
}

// InitCatalogues seed priority/severity mặc định cho case và incident
func (s *InitService) InitCatalogues(ctx context.Context, projectID primitive.ObjectID) error {
	priorities := []string{"low", "medium", "high", "critical"}
	severities := []string{"minor", "major", "critical"}

	for rank, name := range priorities {
		if err := s.ensureCasePriority(ctx, projectID, name, rank+1); err != nil {
			return err
		}
		if err := s.ensureIncidentPriority(ctx, projectID, name, rank+1); err != nil {
			return err
		}
	}
	for rank, name := range severities {
		if err := s.ensureCaseSeverity(ctx, projectID, name, rank+1); err != nil {
			return err
		}
		if err := s.ensureIncidentSeverity(ctx, projectID, name, rank+1); err != nil {
			return err
		}
	}
	logger.GetAppLogger().Info("✅ [INIT] Đã seed catalogue priority/severity")
	return nil
}

// InitPluginEvents seed các plugin event chuẩn mà cost model activity tham chiếu
func (s *InitService) InitPluginEvents(ctx context.Context, projectID primitive.ObjectID) error {
	defaults := []costmodels.PluginEvent{
		{Slug: "chat-message", Description: "Tin nhắn trong kênh của case/incident"},
		{Slug: "ticket-update", Description: "Cập nhật ticket"},
		{Slug: "conference-join", Description: "Tham gia cuộc họp"},
		{Slug: "document-edit", Description: "Chỉnh sửa tài liệu"},
	}

	for _, event := range defaults {
		_, err := s.pluginEvents.FindOne(ctx, bson.M{"projectId": projectID, "slug": event.Slug}, nil)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		event.ProjectID = projectID
		event.Enabled = true
		if _, err := s.pluginEvents.InsertOne(ctx, event); err != nil && !errors.Is(err, common.ErrDuplicate) {
			return err
		}
	}
	logger.GetAppLogger().Info("✅ [INIT] Đã seed plugin events")
	return nil
}

func (s *InitService) ensureCasePriority(ctx context.Context, projectID primitive.ObjectID, name string, rank int) error {
	_, err := s.casePriorities.FindOne(ctx, bson.M{"projectId": projectID, "name": name}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.casePriorities.InsertOne(ctx, incidentmodels.CasePriority{ProjectID: projectID, Name: name, Rank: rank})
	if errors.Is(err, common.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *InitService) ensureCaseSeverity(ctx context.Context, projectID primitive.ObjectID, name string, rank int) error {
	_, err := s.caseSeverities.FindOne(ctx, bson.M{"projectId": projectID, "name": name}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.caseSeverities.InsertOne(ctx, incidentmodels.CaseSeverity{ProjectID: projectID, Name: name, Rank: rank})
	if errors.Is(err, common.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *InitService) ensureIncidentPriority(ctx context.Context, projectID primitive.ObjectID, name string, rank int) error {
	_, err := s.incidentPriorities.FindOne(ctx, bson.M{"projectId": projectID, "name": name}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.incidentPriorities.InsertOne(ctx, incidentmodels.IncidentPriority{ProjectID: projectID, Name: name, Rank: rank})
	if errors.Is(err, common.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *InitService) ensureIncidentSeverity(ctx context.Context, projectID primitive.ObjectID, name string, rank int) error {
	_, err := s.incidentSeverities.FindOne(ctx, bson.M{"projectId": projectID, "name": name}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.incidentSeverities.InsertOne(ctx, incidentmodels.IncidentSeverity{ProjectID: projectID, Name: name, Rank: rank})
	if errors.Is(err, common.ErrDuplicate) {
		return nil
	}
	return err
}
