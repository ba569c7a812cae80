package costsvc

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	authsvc "meta_response/internal/api/auth/service"
	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/cost/models"
	"meta_response/internal/api/events"
	incidentmodels "meta_response/internal/api/incident/models"
	incidentsvc "meta_response/internal/api/incident/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementMultipliers là trọng số thời gian theo role cho model classic
var EngagementMultipliers = map[string]float64{
	incidentmodels.RoleCommander:   1.0,
	incidentmodels.RoleAssignee:    1.0,
	incidentmodels.RoleScribe:      0.75,
	incidentmodels.RoleLiaison:     0.5,
	incidentmodels.RoleReporter:    0.5,
	incidentmodels.RoleParticipant: 0.5,
	incidentmodels.RoleObserver:    0.0,
}

const millisPerHour = 3600_000

// ComputeActivityAmount tính chi phí theo model activity: tổng thời lượng
// các span nhân với đơn giá giờ. Span hỏng (ended < started) bị bỏ qua.
func ComputeActivityAmount(spans []models.ParticipantActivity, hourlyRate float64) float64 {
	var totalMillis int64
	for _, span := range spans {
		if d := span.DurationMillis(); d > 0 {
			totalMillis += d
		}
	}
	return float64(totalMillis) / millisPerHour * hourlyRate
}

// ComputeClassicAmount tính chi phí theo model classic: mỗi khoảng giữ role
// nhân trọng số của role đó. Span đang mở được chặn tại closedAt (nếu subject
// đã đóng) hoặc now. Kết quả làm tròn lên đơn vị tiền tệ.
func ComputeClassicAmount(participants []incidentmodels.Participant, hourlyRate float64, now, closedAt int64) float64 {
	clampTo := now
	if closedAt > 0 {
		clampTo = closedAt
	}

	var weightedHours float64
	for _, participant := range participants {
		for _, span := range participant.Roles {
			multiplier, ok := EngagementMultipliers[span.Role]
			if !ok || multiplier == 0 {
				continue
			}
			end := span.RenouncedAt
			if end == 0 {
				end = clampTo
			}
			if end <= span.AssumedAt {
				continue
			}
			weightedHours += float64(end-span.AssumedAt) / millisPerHour * multiplier
		}
	}
	if weightedHours == 0 {
		return 0
	}
	return math.Ceil(weightedHours * hourlyRate)
}

// ResponseCostService cho phép tra cứu các dòng chi phí đã tính (chỉ đọc)
type ResponseCostService struct {
	*basesvc.BaseServiceMongoImpl[models.ResponseCost]
}

// NewResponseCostService tạo mới ResponseCostService
func NewResponseCostService() (*ResponseCostService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.ResponseCosts)
	if err != nil {
		return nil, err
	}
	return &ResponseCostService{basesvc.NewBaseServiceMongo[models.ResponseCost](col)}, nil
}

// CostEngineService tính và lưu hai dòng chi phí cho mỗi case/incident.
// Recompute chạy khi trạng thái/participant thay đổi và theo sweep định kỳ.
type CostEngineService struct {
	costs        *basesvc.BaseServiceMongoImpl[models.ResponseCost]
	activities   *ActivityRecorderService
	participants *incidentsvc.ParticipantService
	cases        *basesvc.BaseServiceMongoImpl[incidentmodels.Case]
	incidents    *basesvc.BaseServiceMongoImpl[incidentmodels.Incident]
	projects     *authsvc.ProjectService
}

var (
	engineOnce     sync.Once
	engineInstance *CostEngineService
	engineErr      error
)

// GetCostEngine trả về engine singleton; lần đầu sẽ đăng ký listener recompute
// theo thay đổi dữ liệu của cases, incidents và participants.
func GetCostEngine() (*CostEngineService, error) {
	engineOnce.Do(func() {
		engineInstance, engineErr = newCostEngineService()
		if engineErr == nil {
			engineInstance.registerRecomputeTriggers()
		}
	})
	return engineInstance, engineErr
}

func newCostEngineService() (*CostEngineService, error) {
	costCol, err := collectionFor(global.MongoDB_ColNames.ResponseCosts)
	if err != nil {
		return nil, err
	}
	caseCol, err := collectionFor(global.MongoDB_ColNames.Cases)
	if err != nil {
		return nil, err
	}
	incidentCol, err := collectionFor(global.MongoDB_ColNames.Incidents)
	if err != nil {
		return nil, err
	}
	activities, err := NewActivityRecorderService()
	if err != nil {
		return nil, err
	}
	participants, err := incidentsvc.NewParticipantService()
	if err != nil {
		return nil, err
	}
	projects, err := authsvc.NewProjectService()
	if err != nil {
		return nil, err
	}
	return &CostEngineService{
		costs:        basesvc.NewBaseServiceMongo[models.ResponseCost](costCol),
		activities:   activities,
		participants: participants,
		cases:        basesvc.NewBaseServiceMongo[incidentmodels.Case](caseCol),
		incidents:    basesvc.NewBaseServiceMongo[incidentmodels.Incident](incidentCol),
		projects:     projects,
	}, nil
}

// registerRecomputeTriggers nối engine vào luồng data-change: đổi trạng thái
// case/incident hoặc thêm bớt participant đều kéo theo recompute subject đó.
func (s *CostEngineService) registerRecomputeTriggers() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		id := events.GetObjectIDField(e.Document, "ID")
		if id.IsZero() {
			return
		}
		switch e.CollectionName {
		case global.MongoDB_ColNames.Cases:
			s.recomputeLogged(ctx, incidentsvc.CaseSubject(id))
		case global.MongoDB_ColNames.Incidents:
			s.recomputeLogged(ctx, incidentsvc.IncidentSubject(id))
		case global.MongoDB_ColNames.Participants:
			// Subject lấy từ document để vẫn recompute được khi participant bị xóa
			if caseID := events.GetObjectIDField(e.Document, "CaseID"); !caseID.IsZero() {
				s.recomputeLogged(ctx, incidentsvc.CaseSubject(caseID))
			} else if incidentID := events.GetObjectIDField(e.Document, "IncidentID"); !incidentID.IsZero() {
				s.recomputeLogged(ctx, incidentsvc.IncidentSubject(incidentID))
			}
		}
	})
}

func (s *CostEngineService) recomputeLogged(ctx context.Context, subject incidentsvc.Subject) {
	if err := s.Recompute(ctx, subject); err != nil {
		logger.GetErrorLogger().WithField("error", err.Error()).Warn("Recompute chi phí thất bại")
	}
}

// subjectInfo gom các thuộc tính của subject mà engine cần
type subjectInfo struct {
	projectID primitive.ObjectID
	closedAt  int64
}

func (s *CostEngineService) loadSubject(ctx context.Context, subject incidentsvc.Subject) (subjectInfo, error) {
	if !subject.CaseID.IsZero() {
		c, err := s.cases.FindOneById(ctx, subject.CaseID)
		if err != nil {
			return subjectInfo{}, err
		}
		return subjectInfo{projectID: c.ProjectID, closedAt: c.ClosedAt}, nil
	}
	inc, err := s.incidents.FindOneById(ctx, subject.IncidentID)
	if err != nil {
		return subjectInfo{}, err
	}
	return subjectInfo{projectID: inc.ProjectID, closedAt: inc.ClosedAt}, nil
}

// Recompute tính lại cả hai model cho một subject và lưu mỗi model một dòng
func (s *CostEngineService) Recompute(ctx context.Context, subject incidentsvc.Subject) error {
	info, err := s.loadSubject(ctx, subject)
	if err != nil {
		return err
	}
	project, err := s.projects.FindOneById(ctx, info.projectID)
	if err != nil {
		return err
	}
	hourlyRate := s.projects.HourlyRate(&project)

	spans, err := s.activities.FindForSubject(ctx, subject)
	if err != nil {
		return err
	}
	participants, err := s.participants.FindBySubject(ctx, subject)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	activityAmount := ComputeActivityAmount(spans, hourlyRate)
	classicAmount := ComputeClassicAmount(participants, hourlyRate, now, info.closedAt)

	if err := s.persist(ctx, subject, info.projectID, models.CostModelTypeActivity, activityAmount, hourlyRate, now); err != nil {
		return err
	}
	return s.persist(ctx, subject, info.projectID, models.CostModelTypeClassic, classicAmount, hourlyRate, now)
}

// persist upsert dòng chi phí theo (subject, modelType)
func (s *CostEngineService) persist(ctx context.Context, subject incidentsvc.Subject, projectID primitive.ObjectID, modelType string, amount, hourlyRate float64, computedAt int64) error {
	filter := subject.Filter()
	filter["modelType"] = modelType

	existing, err := s.costs.FindOne(ctx, filter, nil)
	if err == nil {
		_, err = s.costs.UpdateById(ctx, existing.ID, bson.M{
			"amount":     amount,
			"hourlyRate": hourlyRate,
			"computedAt": computedAt,
		})
		return err
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	_, err = s.costs.InsertOne(ctx, models.ResponseCost{
		ProjectID:  projectID,
		CaseID:     subject.CaseID,
		IncidentID: subject.IncidentID,
		ModelType:  modelType,
		Amount:     amount,
		HourlyRate: hourlyRate,
		ComputedAt: computedAt,
	})
	return err
}

// FindForSubject trả về các dòng chi phí đã tính của một subject
func (s *CostEngineService) FindForSubject(ctx context.Context, subject incidentsvc.Subject) ([]models.ResponseCost, error) {
	return s.costs.Find(ctx, subject.Filter(), nil)
}

// RecomputeOpenSubjects quét mọi case/incident chưa đóng của một project và
// recompute cả hai model; dùng cho sweep định kỳ của worker.
func (s *CostEngineService) RecomputeOpenSubjects(ctx context.Context, projectID primitive.ObjectID) (int, error) {
	count := 0

	openCases, err := s.cases.Find(ctx, bson.M{
		"projectId": projectID,
		"status":    bson.M{"$ne": incidentmodels.CaseStatusClosed},
	}, nil)
	if err != nil {
		return count, err
	}
	for _, c := range openCases {
		if err := s.Recompute(ctx, incidentsvc.CaseSubject(c.ID)); err != nil {
			logger.GetErrorLogger().WithField("caseId", c.ID.Hex()).Warn("Recompute chi phí case thất bại")
			continue
		}
		count++
	}

	openIncidents, err := s.incidents.Find(ctx, bson.M{
		"projectId": projectID,
		"status":    bson.M{"$ne": incidentmodels.IncidentStatusClosed},
	}, nil)
	if err != nil {
		return count, err
	}
	for _, inc := range openIncidents {
		if err := s.Recompute(ctx, incidentsvc.IncidentSubject(inc.ID)); err != nil {
			logger.GetErrorLogger().WithField("incidentId", inc.ID.Hex()).Warn("Recompute chi phí incident thất bại")
			continue
		}
		count++
	}
	return count, nil
}
