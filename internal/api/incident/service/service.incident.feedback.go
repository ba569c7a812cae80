package incidentsvc

import (
	"context"
	"errors"
	"time"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/incident/models"
	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentFeedbackService nhận phản hồi sau incident của participant
type IncidentFeedbackService struct {
	*basesvc.BaseServiceMongoImpl[models.IncidentFeedback]
}

// NewIncidentFeedbackService tạo mới IncidentFeedbackService
func NewIncidentFeedbackService() (*IncidentFeedbackService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.IncidentFeedbacks)
	if err != nil {
		return nil, err
	}
	return &IncidentFeedbackService{basesvc.NewBaseServiceMongo[models.IncidentFeedback](col)}, nil
}

// Submit ghi nhận phản hồi; mỗi user chỉ một phản hồi cho một incident,
// gửi lại thì ghi đè nội dung cũ.
func (s *IncidentFeedbackService) Submit(ctx context.Context, feedback models.IncidentFeedback) (models.IncidentFeedback, error) {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return models.IncidentFeedback{}, common.NewError(common.ErrCodeValidationInput,
			"Rating phải nằm trong khoảng 1-5", common.StatusBadRequest, nil)
	}

	existing, err := s.FindOne(ctx, bson.M{
		"incidentId": feedback.IncidentID,
		"userId":     feedback.UserID,
	}, nil)
	if err == nil {
		return s.UpdateById(ctx, existing.ID, bson.M{
			"rating":  feedback.Rating,
			"comment": feedback.Comment,
		})
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.IncidentFeedback{}, err
	}
	return s.InsertOne(ctx, feedback)
}

// FindForIncident trả về mọi phản hồi của một incident
func (s *IncidentFeedbackService) FindForIncident(ctx context.Context, incidentID primitive.ObjectID) ([]models.IncidentFeedback, error) {
	return s.Find(ctx, bson.M{"incidentId": incidentID}, nil)
}

// FeedbackReminderService quản lý lời nhắc phản hồi chờ gửi
type FeedbackReminderService struct {
	*basesvc.BaseServiceMongoImpl[models.FeedbackReminder]
}

// NewFeedbackReminderService tạo mới FeedbackReminderService
func NewFeedbackReminderService() (*FeedbackReminderService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.FeedbackReminders)
	if err != nil {
		return nil, err
	}
	return &FeedbackReminderService{basesvc.NewBaseServiceMongo[models.FeedbackReminder](col)}, nil
}

// Schedule tạo lời nhắc mới, gửi sau delay
func (s *FeedbackReminderService) Schedule(ctx context.Context, reminder models.FeedbackReminder, delay time.Duration) (models.FeedbackReminder, error) {
	reminder.ReminderAt = time.Now().Add(delay).UnixMilli()
	return s.InsertOne(ctx, reminder)
}

// FindDue trả về các lời nhắc tới hạn chưa gửi
func (s *FeedbackReminderService) FindDue(ctx context.Context, projectID primitive.ObjectID, now time.Time, limit int64) ([]models.FeedbackReminder, error) {
	filter := bson.M{
		"projectId":  projectID,
		"reminderAt": bson.M{"$lte": now.UnixMilli()},
		"sentAt":     bson.M{"$in": bson.A{nil, int64(0)}},
	}
	reminders, err := s.Find(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(reminders)) > limit {
		reminders = reminders[:limit]
	}
	return reminders, nil
}

// MarkSent đánh dấu lời nhắc đã gửi để không gửi lặp
func (s *FeedbackReminderService) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, bson.M{"sentAt": time.Now().UnixMilli()})
	return err
}
