// Package costsvc - service của domain cost: ghi nhận activity span và tính
// chi phí ứng phó theo hai model song song.
package costsvc

import (
	"context"
	"fmt"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/cost/models"
	incidentsvc "meta_response/internal/api/incident/service"
	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func collectionFor(name string) (*mongo.Collection, error) {
	col, exist := global.RegistryCollections.Get(name)
	if !exist {
		return nil, fmt.Errorf("failed to get %s collection: %v", name, common.ErrNotFound)
	}
	return col, nil
}

// PluginEventService quản lý catalogue plugin event
type PluginEventService struct {
	*basesvc.BaseServiceMongoImpl[models.PluginEvent]
}

// NewPluginEventService tạo mới PluginEventService
func NewPluginEventService() (*PluginEventService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.PluginEvents)
	if err != nil {
		return nil, err
	}
	return &PluginEventService{basesvc.NewBaseServiceMongo[models.PluginEvent](col)}, nil
}

// FindBySlug tìm plugin event theo slug trong project
func (s *PluginEventService) FindBySlug(ctx context.Context, projectID primitive.ObjectID, slug string) (models.PluginEvent, error) {
	return s.FindOne(ctx, bson.M{"projectId": projectID, "slug": slug, "enabled": true}, nil)
}

// CostModelService quản lý cost model (danh sách activity có trọng số)
type CostModelService struct {
	*basesvc.BaseServiceMongoImpl[models.CostModel]
}

// NewCostModelService tạo mới CostModelService
func NewCostModelService() (*CostModelService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.CostModels)
	if err != nil {
		return nil, err
	}
	return &CostModelService{basesvc.NewBaseServiceMongo[models.CostModel](col)}, nil
}

// mergeKind là quyết định merge của recorder cho một span mới
type mergeKind int

const (
	mergeInsert mergeKind = iota // Chèn span mới nguyên vẹn
	mergeExtend                  // Nối dài span cũ cùng plugin event
	mergeClamp                   // Cắt span khác event rồi chèn span mới
)

// mergeDecision mô tả hành động recorder sẽ thực hiện và delta thời gian
// (millis) mà span mới đóng góp thêm.
type mergeDecision struct {
	kind   mergeKind
	newEnd int64 // Chỉ dùng cho mergeExtend
	delta  int64
}

// decideMerge áp quy tắc merge 3 nhánh. sameEvent là span gần nhất cùng
// (user, subject, plugin event); recentOther là span gần nhất cùng
// (user, subject) nhưng khác event. Cả hai có thể nil.
func decideMerge(sameEvent, recentOther *models.ParticipantActivity, startedAt, endedAt int64) mergeDecision {
	if sameEvent != nil && sameEvent.EndedAt >= startedAt {
		delta := endedAt - sameEvent.EndedAt
		if delta < 0 {
			delta = 0
		}
		newEnd := sameEvent.EndedAt
		if endedAt > newEnd {
			newEnd = endedAt
		}
		return mergeDecision{kind: mergeExtend, newEnd: newEnd, delta: delta}
	}

	if recentOther != nil && recentOther.StartedAt <= startedAt && recentOther.EndedAt > startedAt {
		return mergeDecision{kind: mergeClamp, delta: endedAt - startedAt}
	}

	return mergeDecision{kind: mergeInsert, delta: endedAt - startedAt}
}

// ActivityRecorderService ghi nhận activity span với merge idempotent; sau
// merge các span của cùng (user, subject) không bao giờ chồng lấn.
type ActivityRecorderService struct {
	*basesvc.BaseServiceMongoImpl[models.ParticipantActivity]
}

// NewActivityRecorderService tạo mới ActivityRecorderService
func NewActivityRecorderService() (*ActivityRecorderService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.ParticipantActivities)
	if err != nil {
		return nil, err
	}
	return &ActivityRecorderService{basesvc.NewBaseServiceMongo[models.ParticipantActivity](col)}, nil
}

func subjectFilter(subject incidentsvc.Subject, userID primitive.ObjectID) bson.M {
	filter := subject.Filter()
	filter["userId"] = userID
	return filter
}

// Record ghi một span hoạt động mới và trả về delta thời gian (millis) thực sự
// được cộng thêm sau merge.
func (s *ActivityRecorderService) Record(ctx context.Context, projectID, userID primitive.ObjectID, subject incidentsvc.Subject, pluginEventID primitive.ObjectID, startedAt, endedAt int64) (int64, error) {
	if startedAt > endedAt {
		return 0, common.NewError(common.ErrCodeValidationInput,
			"startedAt phải nhỏ hơn hoặc bằng endedAt", common.StatusBadRequest, nil)
	}

	latestOpts := options.FindOne().SetSort(bson.D{{Key: "endedAt", Value: -1}})

	var sameEvent *models.ParticipantActivity
	sameFilter := subjectFilter(subject, userID)
	sameFilter["pluginEventId"] = pluginEventID
	if found, err := s.FindOne(ctx, sameFilter, latestOpts); err == nil {
		sameEvent = &found
	}

	var recentOther *models.ParticipantActivity
	otherFilter := subjectFilter(subject, userID)
	otherFilter["pluginEventId"] = bson.M{"$ne": pluginEventID}
	if found, err := s.FindOne(ctx, otherFilter, latestOpts); err == nil {
		recentOther = &found
	}

	decision := decideMerge(sameEvent, recentOther, startedAt, endedAt)
	switch decision.kind {
	case mergeExtend:
		if _, err := s.UpdateById(ctx, sameEvent.ID, bson.M{"endedAt": decision.newEnd}); err != nil {
			return 0, err
		}
		return decision.delta, nil

	case mergeClamp:
		if _, err := s.UpdateById(ctx, recentOther.ID, bson.M{"endedAt": startedAt}); err != nil {
			return 0, err
		}
	}

	_, err := s.InsertOne(ctx, models.ParticipantActivity{
		ProjectID:     projectID,
		UserID:        userID,
		CaseID:        subject.CaseID,
		IncidentID:    subject.IncidentID,
		PluginEventID: pluginEventID,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
	})
	if err != nil {
		return 0, err
	}
	return decision.delta, nil
}

// FindForSubject trả về mọi span của một case/incident
func (s *ActivityRecorderService) FindForSubject(ctx context.Context, subject incidentsvc.Subject) ([]models.ParticipantActivity, error) {
	return s.Find(ctx, subject.Filter(), nil)
}
