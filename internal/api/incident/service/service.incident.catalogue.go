// Package incidentsvc - service của domain case/incident: state machine,
// fan-out effect, role resolver, timeline.
package incidentsvc

import (
	"fmt"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/incident/models"
	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/mongo"
)

func collectionFor(name string) (*mongo.Collection, error) {
	col, exist := global.RegistryCollections.Get(name)
	if !exist {
		return nil, fmt.Errorf("failed to get %s collection: %v", name, common.ErrNotFound)
	}
	return col, nil
}

// CaseTypeService quản lý catalogue case type
type CaseTypeService struct {
	*basesvc.BaseServiceMongoImpl[models.CaseType]
}

// NewCaseTypeService tạo mới CaseTypeService
func NewCaseTypeService() (*CaseTypeService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.CaseTypes)
	if err != nil {
		return nil, err
	}
	return &CaseTypeService{basesvc.NewBaseServiceMongo[models.CaseType](col)}, nil
}

// CasePriorityService quản lý catalogue case priority
type CasePriorityService struct {
	*basesvc.BaseServiceMongoImpl[models.CasePriority]
}

// NewCasePriorityService tạo mới CasePriorityService
func NewCasePriorityService() (*CasePriorityService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.CasePriorities)
	if err != nil {
		return nil, err
	}
	return &CasePriorityService{basesvc.NewBaseServiceMongo[models.CasePriority](col)}, nil
}

// CaseSeverityService quản lý catalogue case severity
type CaseSeverityService struct {
	*basesvc.BaseServiceMongoImpl[models.CaseSeverity]
}

// NewCaseSeverityService tạo mới CaseSeverityService
func NewCaseSeverityService() (*CaseSeverityService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.CaseSeverities)
	if err != nil {
		return nil, err
	}
	return &CaseSeverityService{basesvc.NewBaseServiceMongo[models.CaseSeverity](col)}, nil
}

// IncidentTypeService quản lý catalogue incident type
type IncidentTypeService struct {
	*basesvc.BaseServiceMongoImpl[models.IncidentType]
}

// NewIncidentTypeService tạo mới IncidentTypeService
func NewIncidentTypeService() (*IncidentTypeService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.IncidentTypes)
	if err != nil {
		return nil, err
	}
	return &IncidentTypeService{basesvc.NewBaseServiceMongo[models.IncidentType](col)}, nil
}

// IncidentPriorityService quản lý catalogue incident priority
type IncidentPriorityService struct {
	*basesvc.BaseServiceMongoImpl[models.IncidentPriority]
}

// NewIncidentPriorityService tạo mới IncidentPriorityService
func NewIncidentPriorityService() (*IncidentPriorityService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.IncidentPriorities)
	if err != nil {
		return nil, err
	}
	return &IncidentPriorityService{basesvc.NewBaseServiceMongo[models.IncidentPriority](col)}, nil
}

// IncidentSeverityService quản lý catalogue incident severity
type IncidentSeverityService struct {
	*basesvc.BaseServiceMongoImpl[models.IncidentSeverity]
}

// NewIncidentSeverityService tạo mới IncidentSeverityService
func NewIncidentSeverityService() (*IncidentSeverityService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.IncidentSeverities)
	if err != nil {
		return nil, err
	}
	return &IncidentSeverityService{basesvc.NewBaseServiceMongo[models.IncidentSeverity](col)}, nil
}

// TagService quản lý tag của project
type TagService struct {
	*basesvc.BaseServiceMongoImpl[models.Tag]
}

// NewTagService tạo mới TagService
func NewTagService() (*TagService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.Tags)
	if err != nil {
		return nil, err
	}
	return &TagService{basesvc.NewBaseServiceMongo[models.Tag](col)}, nil
}
