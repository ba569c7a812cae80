// Package authsvc - service project.
package authsvc

import (
	"context"
	"errors"
	"fmt"

	models "meta_response/internal/api/auth/models"
	basesvc "meta_response/internal/api/base/service"
	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBusinessYearHours số giờ làm việc mỗi năm khi project không cấu hình
const DefaultBusinessYearHours = 2080

// ProjectService là cấu trúc chứa các phương thức liên quan đến project
type ProjectService struct {
	*basesvc.BaseServiceMongoImpl[models.Project]
}

// NewProjectService tạo mới ProjectService
func NewProjectService() (*ProjectService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Projects)
	if !exist {
		return nil, fmt.Errorf("failed to get projects collection: %v", common.ErrNotFound)
	}
	return &ProjectService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Project](collection),
	}, nil
}

// FindEnabled trả về danh sách project đang bật (scheduler duyệt qua danh sách này)
func (s *ProjectService) FindEnabled(ctx context.Context) ([]models.Project, error) {
	return s.BaseServiceMongoImpl.Find(ctx, bson.M{"enabled": true}, nil)
}

// HourlyRate tính chi phí mỗi giờ của project: annual cost / business-year hours.
// Trả về 0 nếu project chưa cấu hình chi phí.
func (s *ProjectService) HourlyRate(project *models.Project) float64 {
	if project.AnnualEmployeeCost <= 0 {
		return 0
	}
	hours := project.BusinessYearHours
	if hours <= 0 {
		hours = DefaultBusinessYearHours
	}
	return project.AnnualEmployeeCost / hours
}

// EnsureDefault đảm bảo project mặc định của tổ chức tồn tại (dùng khi INITMODE)
func (s *ProjectService) EnsureDefault(ctx context.Context, orgID primitive.ObjectID) (*models.Project, error) {
	project, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"organizationId": orgID, "name": "default"}, nil)
	if err == nil {
		return &project, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.Project{
		OrganizationID:     orgID,
		Name:               "default",
		Enabled:            true,
		BusinessYearHours:  DefaultBusinessYearHours,
		AnnualEmployeeCost: 0,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			project, findErr := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"organizationId": orgID, "name": "default"}, nil)
			if findErr == nil {
				return &project, nil
			}
		}
		return nil, err
	}
	return &created, nil
}
