// Package signalsvc - service của domain signal: catalogue, trích xuất entity,
// và pipeline ingest.
package signalsvc

import (
	"context"
	"fmt"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/signal/models"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignalService quản lý catalogue signal
type SignalService struct {
	*basesvc.BaseServiceMongoImpl[models.Signal]
}

// NewSignalService tạo mới SignalService
func NewSignalService() (*SignalService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Signals)
	if !exist {
		return nil, fmt.Errorf("failed to get signals collection: %v", common.ErrNotFound)
	}
	return &SignalService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Signal](col),
	}, nil
}

// FindByRef resolve signal trong project theo hex ObjectID hoặc variant
func (s *SignalService) FindByRef(ctx context.Context, projectID primitive.ObjectID, ref string) (models.Signal, error) {
	if id, err := utility.String2ObjectID(ref); err == nil {
		signal, err := s.FindOneById(ctx, id)
		if err == nil && signal.ProjectID == projectID {
			return signal, nil
		}
	}
	return s.FindOne(ctx, bson.M{"projectId": projectID, "variant": ref}, nil)
}
