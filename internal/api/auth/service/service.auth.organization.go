// Package authsvc - service tổ chức (Organization).
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
)

// OrganizationService là cấu trúc chứa các phương thức liên quan đến tổ chức
type OrganizationService struct {
	*basesvc.BaseServiceMongoImpl[models.Organization]
}

// NewOrganizationService tạo mới OrganizationService
func NewOrganizationService() (*OrganizationService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get organizations collection: %v", common.ErrNotFound)
	}
	return &OrganizationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Organization](collection),
	}, nil
}

// EnsureDefault đảm bảo tổ chức mặc định tồn tại (dùng khi INITMODE)
func (s *OrganizationService) EnsureDefault(ctx context.Context) (*models.Organization, error) {
	org, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"isDefault": true}, nil)
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.Organization{
		Name:      "Default Organization",
		Slug:      "default",
		IsDefault: true,
	})
	if err != nil {
		// Tiến trình khác có thể vừa seed xong
		if errors.Is(err, common.ErrDuplicate) {
			org, findErr := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"isDefault": true}, nil)
			if findErr == nil {
				return &org, nil
			}
		}
		return nil, err
	}
	return &created, nil
}
