package signalsvc

import (
	"context"
	"fmt"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/signal/models"
	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntityTypeService quản lý quy tắc trích xuất entity
type EntityTypeService struct {
	*basesvc.BaseServiceMongoImpl[models.EntityType]
}

// NewEntityTypeService tạo mới EntityTypeService
func NewEntityTypeService() (*EntityTypeService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EntityTypes)
	if !exist {
		return nil, fmt.Errorf("failed to get entity_types collection: %v", common.ErrNotFound)
	}
	return &EntityTypeService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.EntityType](col),
	}, nil
}

// FindForSignal trả về các type enabled áp dụng cho một signal:
// type gắn trực tiếp với signal cộng với các type toàn project (scope=all hoặc global).
func (s *EntityTypeService) FindForSignal(ctx context.Context, projectID, signalID primitive.ObjectID) ([]models.EntityType, error) {
	filter := bson.M{
		"projectId": projectID,
		"enabled":   true,
		"$or": []bson.M{
			{"signalId": signalID},
			{"scope": models.EntityScopeAll},
			{"global": true},
		},
	}
	return s.Find(ctx, filter, nil)
}

// EntityService quản lý các giá trị entity đã trích xuất
type EntityService struct {
	*basesvc.BaseServiceMongoImpl[models.Entity]
}

// NewEntityService tạo mới EntityService
func NewEntityService() (*EntityService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Entities)
	if !exist {
		return nil, fmt.Errorf("failed to get entities collection: %v", common.ErrNotFound)
	}
	return &EntityService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Entity](col),
	}, nil
}

// LookupOrCreate tìm hoặc tạo entity theo (project, type, value)
func (s *EntityService) LookupOrCreate(ctx context.Context, projectID, entityTypeID primitive.ObjectID, value string) (models.Entity, error) {
	filter := bson.M{
		"projectId":    projectID,
		"entityTypeId": entityTypeID,
		"value":        value,
	}
	return s.Upsert(ctx, filter, models.Entity{
		ProjectID:    projectID,
		EntityTypeID: entityTypeID,
		Value:        value,
	})
}
