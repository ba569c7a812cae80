package incidentsvc

import (
	"context"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/incident/models"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventService ghi và đọc timeline của case/incident
type EventService struct {
	*basesvc.BaseServiceMongoImpl[models.Event]
}

// NewEventService tạo mới EventService
func NewEventService() (*EventService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.Events)
	if err != nil {
		return nil, err
	}
	return &EventService{basesvc.NewBaseServiceMongo[models.Event](col)}, nil
}

// RecordForCase ghi một event vào timeline của case (best-effort, lỗi chỉ log)
func (s *EventService) RecordForCase(ctx context.Context, projectID, caseID primitive.ObjectID, kind, message string, details map[string]interface{}) {
	_, err := s.InsertOne(ctx, models.Event{
		ProjectID: projectID,
		CaseID:    caseID,
		Kind:      kind,
		Message:   message,
		Details:   details,
	})
	if err != nil {
		logger.GetErrorLogger().WithField("caseId", caseID.Hex()).WithField("kind", kind).
			Error("Không ghi được event timeline của case")
	}
}

// RecordForIncident ghi một event vào timeline của incident
func (s *EventService) RecordForIncident(ctx context.Context, projectID, incidentID primitive.ObjectID, kind, message string, details map[string]interface{}) {
	_, err := s.InsertOne(ctx, models.Event{
		ProjectID:  projectID,
		IncidentID: incidentID,
		Kind:       kind,
		Message:    message,
		Details:    details,
	})
	if err != nil {
		logger.GetErrorLogger().WithField("incidentId", incidentID.Hex()).WithField("kind", kind).
			Error("Không ghi được event timeline của incident")
	}
}

// TimelineForCase trả về timeline của case theo thứ tự thời gian
func (s *EventService) TimelineForCase(ctx context.Context, caseID primitive.ObjectID) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.Find(ctx, bson.M{"caseId": caseID}, opts)
}

// TimelineForIncident trả về timeline của incident theo thứ tự thời gian
func (s *EventService) TimelineForIncident(ctx context.Context, incidentID primitive.ObjectID) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.Find(ctx, bson.M{"incidentId": incidentID}, opts)
}
