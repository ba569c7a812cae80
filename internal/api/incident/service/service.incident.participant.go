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

// Subject định danh case hoặc incident mà participant thuộc về
type Subject struct {
	CaseID     primitive.ObjectID
	IncidentID primitive.ObjectID
}

// CaseSubject tạo subject cho case
func CaseSubject(id primitive.ObjectID) Subject {
	return Subject{CaseID: id}
}

// IncidentSubject tạo subject cho incident
func IncidentSubject(id primitive.ObjectID) Subject {
	return Subject{IncidentID: id}
}

// Filter trả về điều kiện truy vấn Mongo cho subject
func (s Subject) Filter() bson.M {
	if !s.CaseID.IsZero() {
		return bson.M{"caseId": s.CaseID}
	}
	return bson.M{"incidentId": s.IncidentID}
}

// ParticipantService quản lý participant và lịch sử role của họ
type ParticipantService struct {
	*basesvc.BaseServiceMongoImpl[models.Participant]
}

// NewParticipantService tạo mới ParticipantService
func NewParticipantService() (*ParticipantService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.Participants)
	if err != nil {
		return nil, err
	}
	return &ParticipantService{basesvc.NewBaseServiceMongo[models.Participant](col)}, nil
}

// FindBySubject trả về mọi participant của một case/incident
func (s *ParticipantService) FindBySubject(ctx context.Context, subject Subject) ([]models.Participant, error) {
	return s.Find(ctx, subject.Filter(), nil)
}

// findOrCreate tìm participant của user trong subject, tạo mới nếu chưa có
func (s *ParticipantService) findOrCreate(ctx context.Context, projectID primitive.ObjectID, subject Subject, userID primitive.ObjectID) (models.Participant, error) {
	filter := subject.Filter()
	filter["userId"] = userID

	participant, err := s.FindOne(ctx, filter, nil)
	if err == nil {
		return participant, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return participant, err
	}

	return s.InsertOne(ctx, models.Participant{
		ProjectID:  projectID,
		UserID:     userID,
		CaseID:     subject.CaseID,
		IncidentID: subject.IncidentID,
	})
}

// AssignRole gán role cho user trong subject. Người đang giữ role đó (nếu có)
// bị renounce trước; user đã ở role khác vẫn được nhận thêm role mới.
func (s *ParticipantService) AssignRole(ctx context.Context, projectID primitive.ObjectID, subject Subject, userID primitive.ObjectID, role string) (models.Participant, error) {
	var zero models.Participant

	participant, err := s.findOrCreate(ctx, projectID, subject, userID)
	if err != nil {
		return zero, err
	}

	// User đã đang giữ đúng role này: no-op để assignment idempotent
	for _, existing := range participant.Roles {
		if existing.Role == role && existing.RenouncedAt == 0 {
			return participant, nil
		}
	}

	if err := s.RenounceRole(ctx, subject, role); err != nil {
		return zero, err
	}

	span := models.ParticipantRole{Role: role, AssumedAt: time.Now().UnixMilli()}
	return s.UpdateById(ctx, participant.ID, &basesvc.UpdateData{
		Push: map[string]interface{}{"roles": span},
	})
}

// RenounceRole kết thúc span đang mở của một role trong subject (mọi người giữ)
func (s *ParticipantService) RenounceRole(ctx context.Context, subject Subject, role string) error {
	participants, err := s.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, participant := range participants {
		changed := false
		for i := range participant.Roles {
			if participant.Roles[i].Role == role && participant.Roles[i].RenouncedAt == 0 {
				participant.Roles[i].RenouncedAt = now
				changed = true
			}
		}
		if !changed {
			continue
		}
		_, err := s.UpdateById(ctx, participant.ID, bson.M{"roles": participant.Roles})
		if err != nil {
			return err
		}
	}
	return nil
}
