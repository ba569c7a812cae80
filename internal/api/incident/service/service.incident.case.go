package incidentsvc

import (
	"context"
	"errors"
	"time"

	authsvc "meta_response/internal/api/auth/service"
	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/incident/models"
	signalsvc "meta_response/internal/api/signal/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseService quản lý vòng đời case: tạo từ signal hoặc thủ công, chuyển
// trạng thái theo state machine, fan-out effect và gán role.
type CaseService struct {
	*basesvc.BaseServiceMongoImpl[models.Case]

	caseTypes    *CaseTypeService
	effects      *EffectEngine
	events       *EventService
	participants *ParticipantService
	resolver     *RoleResolver
	users        *authsvc.UserService
}

// NewCaseService tạo mới CaseService
func NewCaseService() (*CaseService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.Cases)
	if err != nil {
		return nil, err
	}
	caseTypes, err := NewCaseTypeService()
	if err != nil {
		return nil, err
	}
	effects, err := NewEffectEngine()
	if err != nil {
		return nil, err
	}
	events, err := NewEventService()
	if err != nil {
		return nil, err
	}
	participants, err := NewParticipantService()
	if err != nil {
		return nil, err
	}
	resolver, err := NewRoleResolver()
	if err != nil {
		return nil, err
	}
	users, err := authsvc.NewUserService()
	if err != nil {
		return nil, err
	}
	return &CaseService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Case](col),
		caseTypes:            caseTypes,
		effects:              effects,
		events:               events,
		participants:         participants,
		resolver:             resolver,
		users:                users,
	}, nil
}

// IsCaseOpen trả về true khi case tồn tại và chưa đóng
func (s *CaseService) IsCaseOpen(ctx context.Context, caseID primitive.ObjectID) (bool, error) {
	c, err := s.FindOneById(ctx, caseID)
	if err != nil {
		return false, err
	}
	return c.Status != models.CaseStatusClosed, nil
}

// AttachOrCreate gắn signal instance vào case mở cùng fingerprint nếu có,
// không thì tạo case mới với fan-out đầy đủ.
func (s *CaseService) AttachOrCreate(ctx context.Context, seed signalsvc.CaseSeed) (primitive.ObjectID, error) {
	if seed.Fingerprint != "" {
		existing, err := s.FindOne(ctx, bson.M{
			"projectId":   seed.ProjectID,
			"fingerprint": seed.Fingerprint,
			"status":      bson.M{"$ne": models.CaseStatusClosed},
		}, nil)
		if err == nil {
			s.events.RecordForCase(ctx, seed.ProjectID, existing.ID, models.EventKindNote,
				"Signal instance mới được gắn vào case", map[string]interface{}{"signalInstance": seed.SignalInstanceID})
			return existing.ID, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return primitive.NilObjectID, err
		}
	}

	c := models.Case{
		ProjectID:   seed.ProjectID,
		Title:       seed.Title,
		Description: seed.Description,
		Status:      models.CaseStatusNew,
		Visibility:  models.VisibilityOpen,
		TypeID:      seed.TypeID,
		PriorityID:  seed.PriorityID,
		SeverityID:  seed.SeverityID,
		Fingerprint: seed.Fingerprint,
		ReportedAt:  time.Now().UnixMilli(),
	}
	if caseType, err := s.caseTypes.FindOneById(ctx, seed.TypeID); err == nil && caseType.Restricted {
		c.Visibility = models.VisibilityRestricted
	}

	assignee := s.resolveAssignee(ctx, seed)
	if assignee != nil {
		c.AssigneeID = assignee.UserID
	}

	created, err := s.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.events.RecordForCase(ctx, created.ProjectID, created.ID, models.EventKindNote,
		"Case được tạo từ signal", map[string]interface{}{"signalInstance": seed.SignalInstanceID})

	var memberEmails []string
	if assignee != nil {
		memberEmails = append(memberEmails, assignee.Email)
		if _, err := s.participants.AssignRole(ctx, created.ProjectID, CaseSubject(created.ID), assignee.UserID, models.RoleAssignee); err != nil {
			logger.GetErrorLogger().WithField("caseId", created.ID.Hex()).Error("Không gán được assignee cho case")
		} else {
			s.events.RecordForCase(ctx, created.ProjectID, created.ID, models.EventKindRoleAssigned,
				"Assignee được gán qua policy", map[string]interface{}{"email": assignee.Email})
		}
	}

	s.effects.CaseCreated(ctx, &created, memberEmails)

	created, err = s.UpdateById(ctx, created.ID, bson.M{
		"name":            created.Name,
		"assigneeId":      created.AssigneeID,
		"ticketRef":       created.TicketRef,
		"ticketWeblink":   created.TicketWeblink,
		"conversationRef": created.ConversationRef,
		"storageRef":      created.StorageRef,
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return created.ID, nil
}

// resolveAssignee chọn assignee: oncall service khai báo trên signal được ưu
// tiên, không có thì rơi về policy của role assignee. Không chọn được thì
// case vẫn tạo, assignee để trống.
func (s *CaseService) resolveAssignee(ctx context.Context, seed signalsvc.CaseSeed) *Resolution {
	if seed.OncallServiceRef != "" {
		resolution, err := s.resolveOncall(ctx, seed.ProjectID, seed.OncallServiceRef)
		if err == nil {
			return resolution
		}
		logger.GetAppLogger().WithField("service", seed.OncallServiceRef).WithField("error", err.Error()).
			Warn("Không resolve được oncall của signal, rơi về policy")
	}

	target := PolicyTarget{PriorityID: seed.PriorityID, TypeID: seed.TypeID}
	resolution, err := s.resolver.Resolve(ctx, seed.ProjectID, models.RoleAssignee, target)
	if err != nil {
		logger.GetAppLogger().WithField("error", err.Error()).Info("Không có assignee qua policy, case tạo không assignee")
		return nil
	}
	return resolution
}

func (s *CaseService) resolveOncall(ctx context.Context, projectID primitive.ObjectID, serviceRef string) (*Resolution, error) {
	oncall, err := s.resolver.registry.Oncall(ctx, projectID)
	if err != nil {
		return nil, err
	}
	shift, err := oncall.Current(ctx, serviceRef)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, shift.Email)
	if err != nil {
		return nil, err
	}
	return &Resolution{UserID: user.ID, Email: user.Email}, nil
}

// CreateManual tạo case thủ công (không qua signal), reporter là người tạo
func (s *CaseService) CreateManual(ctx context.Context, c models.Case, reporterID primitive.ObjectID) (models.Case, error) {
	c.Status = models.CaseStatusNew
	c.ReporterID = reporterID
	c.ReportedAt = time.Now().UnixMilli()
	if c.Visibility == "" {
		c.Visibility = models.VisibilityOpen
	}
	if caseType, err := s.caseTypes.FindOneById(ctx, c.TypeID); err == nil && caseType.Restricted {
		c.Visibility = models.VisibilityRestricted
	}

	created, err := s.InsertOne(ctx, c)
	if err != nil {
		return created, err
	}

	var memberEmails []string
	if reporter, err := s.users.FindOneById(ctx, reporterID); err == nil {
		memberEmails = append(memberEmails, reporter.Email)
	}
	if _, err := s.participants.AssignRole(ctx, created.ProjectID, CaseSubject(created.ID), reporterID, models.RoleReporter); err != nil {
		logger.GetErrorLogger().WithField("caseId", created.ID.Hex()).Error("Không gán được reporter cho case")
	}

	s.effects.CaseCreated(ctx, &created, memberEmails)

	return s.UpdateById(ctx, created.ID, bson.M{
		"name":            created.Name,
		"ticketRef":       created.TicketRef,
		"ticketWeblink":   created.TicketWeblink,
		"conversationRef": created.ConversationRef,
		"storageRef":      created.StorageRef,
	})
}

// Transition chuyển case sang trạng thái mới theo state machine. Trạng thái
// escalated chỉ đi qua IncidentService.EscalateCase vì cần tạo incident kèm theo.
func (s *CaseService) Transition(ctx context.Context, caseID primitive.ObjectID, to, resolution, resolutionReason string, actorID primitive.ObjectID) (models.Case, error) {
	var zero models.Case

	if to == models.CaseStatusEscalated {
		return zero, common.NewError(common.ErrCodeBusinessOperation,
			"Escalate case phải đi qua thao tác escalate để tạo incident", common.StatusBadRequest, nil)
	}

	c, err := s.FindOneById(ctx, caseID)
	if err != nil {
		return zero, err
	}
	if err := guardCaseTransition(&c, to, resolution, resolutionReason); err != nil {
		return zero, err
	}

	from := c.Status
	now := time.Now().UnixMilli()
	update := bson.M{"status": to}
	switch to {
	case models.CaseStatusTriage:
		update["triageAt"] = now
	case models.CaseStatusClosed:
		update["closedAt"] = now
		update["resolution"] = resolution
		update["resolutionReason"] = resolutionReason
	}

	c, err = s.UpdateById(ctx, caseID, update)
	if err != nil {
		return zero, err
	}

	s.events.RecordForCase(ctx, c.ProjectID, c.ID, models.EventKindTransition,
		"Case chuyển từ "+from+" sang "+to,
		map[string]interface{}{"from": from, "to": to, "actor": actorID.Hex()})

	if to == models.CaseStatusClosed {
		s.effects.CaseClosed(ctx, &c)
	} else {
		s.effects.CaseUpdated(ctx, &c)
	}
	return c, nil
}

// AssignRole gán role cho user trong case và cập nhật field tương ứng
func (s *CaseService) AssignRole(ctx context.Context, caseID, userID primitive.ObjectID, role string, actorID primitive.ObjectID) (models.Case, error) {
	var zero models.Case

	c, err := s.FindOneById(ctx, caseID)
	if err != nil {
		return zero, err
	}
	if _, err := s.participants.AssignRole(ctx, c.ProjectID, CaseSubject(caseID), userID, role); err != nil {
		return zero, err
	}

	update := bson.M{}
	switch role {
	case models.RoleAssignee:
		update["assigneeId"] = userID
	case models.RoleReporter:
		update["reporterId"] = userID
	}
	if len(update) > 0 {
		c, err = s.UpdateById(ctx, caseID, update)
		if err != nil {
			return zero, err
		}
	}

	s.events.RecordForCase(ctx, c.ProjectID, c.ID, models.EventKindRoleAssigned,
		"Role "+role+" được gán",
		map[string]interface{}{"role": role, "user": userID.Hex(), "actor": actorID.Hex()})
	return c, nil
}

// markEscalated set trạng thái escalated và liên kết incident; chỉ gọi nội bộ
// từ flow escalate sau khi incident đã tạo xong.
func (s *CaseService) markEscalated(ctx context.Context, caseID, incidentID primitive.ObjectID, actorID primitive.ObjectID) (models.Case, error) {
	c, err := s.UpdateById(ctx, caseID, bson.M{
		"status":     models.CaseStatusEscalated,
		"incidentId": incidentID,
	})
	if err != nil {
		return c, err
	}
	s.events.RecordForCase(ctx, c.ProjectID, c.ID, models.EventKindTransition,
		"Case escalate thành incident",
		map[string]interface{}{"to": models.CaseStatusEscalated, "incident": incidentID.Hex(), "actor": actorID.Hex()})
	s.effects.CaseUpdated(ctx, &c)
	return c, nil
}
