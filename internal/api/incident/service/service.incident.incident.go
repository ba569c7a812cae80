package incidentsvc

import (
	"context"
	"time"

	authsvc "meta_response/internal/api/auth/service"
	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/incident/models"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentService quản lý vòng đời incident: khai báo trực tiếp hoặc escalate
// từ case, chuyển trạng thái (kể cả reopen), gán role qua resolver.
type IncidentService struct {
	*basesvc.BaseServiceMongoImpl[models.Incident]

	incidentTypes *IncidentTypeService
	cases         *CaseService
	effects       *EffectEngine
	events        *EventService
	participants  *ParticipantService
	resolver      *RoleResolver
	users         *authsvc.UserService
}

// NewIncidentService tạo mới IncidentService
func NewIncidentService() (*IncidentService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.Incidents)
	if err != nil {
		return nil, err
	}
	incidentTypes, err := NewIncidentTypeService()
	if err != nil {
		return nil, err
	}
	cases, err := NewCaseService()
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
	return &IncidentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Incident](col),
		incidentTypes:        incidentTypes,
		cases:                cases,
		effects:              effects,
		events:               events,
		participants:         participants,
		resolver:             resolver,
		users:                users,
	}, nil
}

// Declare khai báo incident mới, reporter là người khai báo.
// Commander được resolve qua policy; không có policy thì commander là reporter.
func (s *IncidentService) Declare(ctx context.Context, inc models.Incident, reporterID primitive.ObjectID) (models.Incident, error) {
	inc.Status = models.IncidentStatusActive
	inc.ReporterID = reporterID
	inc.ReportedAt = time.Now().UnixMilli()
	if inc.Visibility == "" {
		inc.Visibility = models.VisibilityOpen
	}
	if incidentType, err := s.incidentTypes.FindOneById(ctx, inc.TypeID); err == nil && incidentType.Restricted {
		inc.Visibility = models.VisibilityRestricted
	}

	created, err := s.InsertOne(ctx, inc)
	if err != nil {
		return created, err
	}
	s.events.RecordForIncident(ctx, created.ProjectID, created.ID, models.EventKindNote,
		"Incident được khai báo", map[string]interface{}{"reporter": reporterID.Hex()})

	return s.bootstrap(ctx, created, reporterID)
}

// EscalateCase chuyển một case thành incident: tạo incident mới mang nội dung
// của case rồi đánh dấu case escalated. Phân loại (type/priority/severity)
// thuộc catalogue incident nên nhận từ đầu vào, không suy từ catalogue case.
func (s *IncidentService) EscalateCase(ctx context.Context, caseID primitive.ObjectID, inc models.Incident, actorID primitive.ObjectID) (models.Incident, error) {
	var zero models.Incident

	c, err := s.cases.FindOneById(ctx, caseID)
	if err != nil {
		return zero, err
	}
	if err := guardCaseTransition(&c, models.CaseStatusEscalated, "", ""); err != nil {
		return zero, err
	}

	inc.ProjectID = c.ProjectID
	inc.Status = models.IncidentStatusActive
	inc.CaseID = c.ID
	inc.ReporterID = c.ReporterID
	inc.ReportedAt = time.Now().UnixMilli()
	if inc.Title == "" {
		inc.Title = c.Title
	}
	if inc.Description == "" {
		inc.Description = c.Description
	}
	inc.Visibility = c.Visibility
	if incidentType, err := s.incidentTypes.FindOneById(ctx, inc.TypeID); err == nil && incidentType.Restricted {
		inc.Visibility = models.VisibilityRestricted
	}
	if len(inc.TagIDs) == 0 {
		inc.TagIDs = c.TagIDs
	}

	created, err := s.InsertOne(ctx, inc)
	if err != nil {
		return zero, err
	}
	s.events.RecordForIncident(ctx, created.ProjectID, created.ID, models.EventKindNote,
		"Incident được tạo từ case escalate", map[string]interface{}{"case": c.ID.Hex(), "actor": actorID.Hex()})

	created, err = s.bootstrap(ctx, created, c.AssigneeID)
	if err != nil {
		return zero, err
	}

	if _, err := s.cases.markEscalated(ctx, c.ID, created.ID, actorID); err != nil {
		logger.GetErrorLogger().WithField("caseId", c.ID.Hex()).WithField("incidentId", created.ID.Hex()).
			Error("Incident đã tạo nhưng không đánh dấu được case escalated")
	}
	return created, nil
}

// bootstrap gán role ban đầu và chạy fan-out tạo incident.
// fallbackCommander dùng khi không có policy commander nào khớp.
func (s *IncidentService) bootstrap(ctx context.Context, created models.Incident, fallbackCommander primitive.ObjectID) (models.Incident, error) {
	target := PolicyTarget{PriorityID: created.PriorityID, TypeID: created.TypeID, TagIDs: created.TagIDs}

	var memberEmails []string
	commanderID := fallbackCommander
	resolution, err := s.resolver.Resolve(ctx, created.ProjectID, models.RoleCommander, target)
	if err == nil {
		commanderID = resolution.UserID
		memberEmails = append(memberEmails, resolution.Email)
	} else {
		logger.GetAppLogger().WithField("error", err.Error()).Info("Không resolve được commander qua policy, dùng fallback")
		if user, err := s.users.FindOneById(ctx, fallbackCommander); err == nil {
			memberEmails = append(memberEmails, user.Email)
		}
	}

	if !commanderID.IsZero() {
		created.CommanderID = commanderID
		if _, err := s.participants.AssignRole(ctx, created.ProjectID, IncidentSubject(created.ID), commanderID, models.RoleCommander); err != nil {
			logger.GetErrorLogger().WithField("incidentId", created.ID.Hex()).Error("Không gán được commander cho incident")
		} else {
			s.events.RecordForIncident(ctx, created.ProjectID, created.ID, models.EventKindRoleAssigned,
				"Commander được gán", map[string]interface{}{"user": commanderID.Hex()})
		}
	}
	if !created.ReporterID.IsZero() && created.ReporterID != commanderID {
		if _, err := s.participants.AssignRole(ctx, created.ProjectID, IncidentSubject(created.ID), created.ReporterID, models.RoleReporter); err != nil {
			logger.GetErrorLogger().WithField("incidentId", created.ID.Hex()).Error("Không gán được reporter cho incident")
		}
		if user, err := s.users.FindOneById(ctx, created.ReporterID); err == nil {
			memberEmails = append(memberEmails, user.Email)
		}
	}

	// Các role phụ (scribe, liaison) chỉ gán khi có policy khai báo
	for _, role := range []string{models.RoleScribe, models.RoleLiaison} {
		resolution, err := s.resolver.Resolve(ctx, created.ProjectID, role, target)
		if err != nil {
			continue
		}
		if _, err := s.participants.AssignRole(ctx, created.ProjectID, IncidentSubject(created.ID), resolution.UserID, role); err != nil {
			logger.GetErrorLogger().WithField("incidentId", created.ID.Hex()).WithField("role", role).
				Error("Không gán được role phụ cho incident")
			continue
		}
		memberEmails = append(memberEmails, resolution.Email)
		s.events.RecordForIncident(ctx, created.ProjectID, created.ID, models.EventKindRoleAssigned,
			"Role "+role+" được gán qua policy", map[string]interface{}{"user": resolution.UserID.Hex()})
	}

	s.effects.IncidentCreated(ctx, &created, memberEmails)

	return s.UpdateById(ctx, created.ID, bson.M{
		"name":            created.Name,
		"commanderId":     created.CommanderID,
		"ticketRef":       created.TicketRef,
		"ticketWeblink":   created.TicketWeblink,
		"conversationRef": created.ConversationRef,
		"conferenceRef":   created.ConferenceRef,
		"storageRef":      created.StorageRef,
	})
}

// Transition chuyển incident sang trạng thái mới. closed → active là reopen:
// timestamp đóng cũ bị xóa và kênh hội thoại được mở lại.
func (s *IncidentService) Transition(ctx context.Context, incidentID primitive.ObjectID, to, resolution, resolutionReason string, actorID primitive.ObjectID) (models.Incident, error) {
	var zero models.Incident

	inc, err := s.FindOneById(ctx, incidentID)
	if err != nil {
		return zero, err
	}
	if err := guardIncidentTransition(&inc, to, resolution, resolutionReason); err != nil {
		return zero, err
	}

	from := inc.Status
	reopen := from == models.IncidentStatusClosed && to == models.IncidentStatusActive
	now := time.Now().UnixMilli()

	var update interface{}
	switch {
	case to == models.IncidentStatusStable:
		update = bson.M{"status": to, "stableAt": now}
	case to == models.IncidentStatusClosed:
		update = bson.M{"status": to, "closedAt": now, "resolution": resolution, "resolutionReason": resolutionReason}
	case reopen:
		update = &basesvc.UpdateData{
			Set:   map[string]interface{}{"status": to},
			Unset: map[string]interface{}{"closedAt": "", "resolution": "", "resolutionReason": ""},
		}
	default:
		update = bson.M{"status": to}
	}

	inc, err = s.UpdateById(ctx, incidentID, update)
	if err != nil {
		return zero, err
	}

	s.events.RecordForIncident(ctx, inc.ProjectID, inc.ID, models.EventKindTransition,
		"Incident chuyển từ "+from+" sang "+to,
		map[string]interface{}{"from": from, "to": to, "actor": actorID.Hex()})

	switch {
	case to == models.IncidentStatusClosed:
		s.effects.IncidentClosed(ctx, &inc)
	case reopen:
		s.effects.IncidentReopened(ctx, &inc, s.participantEmails(ctx, inc.ID))
		if inc.ConversationRef != "" {
			inc, err = s.UpdateById(ctx, inc.ID, bson.M{"conversationRef": inc.ConversationRef})
			if err != nil {
				return zero, err
			}
		}
	default:
		s.effects.IncidentUpdated(ctx, &inc)
	}
	return inc, nil
}

// AssignRole gán role cho user trong incident, cập nhật CommanderID nếu cần
func (s *IncidentService) AssignRole(ctx context.Context, incidentID, userID primitive.ObjectID, role string, actorID primitive.ObjectID) (models.Incident, error) {
	var zero models.Incident

	inc, err := s.FindOneById(ctx, incidentID)
	if err != nil {
		return zero, err
	}
	if _, err := s.participants.AssignRole(ctx, inc.ProjectID, IncidentSubject(incidentID), userID, role); err != nil {
		return zero, err
	}

	if role == models.RoleCommander {
		inc, err = s.UpdateById(ctx, incidentID, bson.M{"commanderId": userID})
		if err != nil {
			return zero, err
		}
	}

	s.events.RecordForIncident(ctx, inc.ProjectID, inc.ID, models.EventKindRoleAssigned,
		"Role "+role+" được gán",
		map[string]interface{}{"role": role, "user": userID.Hex(), "actor": actorID.Hex()})

	if user, err := s.users.FindOneById(ctx, userID); err == nil && inc.ConversationRef != "" {
		if chat, err := s.resolver.registry.Chat(ctx, inc.ProjectID); err == nil {
			if err := chat.AddMembers(ctx, inc.ConversationRef, []string{user.Email}); err != nil {
				logger.GetAppLogger().WithField("incidentId", inc.ID.Hex()).Warn("Không thêm được thành viên mới vào kênh hội thoại")
			}
		}
	}
	return inc, nil
}

// participantEmails gom email của mọi participant đang hoạt động của incident
func (s *IncidentService) participantEmails(ctx context.Context, incidentID primitive.ObjectID) []string {
	participants, err := s.participants.FindBySubject(ctx, IncidentSubject(incidentID))
	if err != nil {
		return nil
	}
	var emails []string
	for _, p := range participants {
		if len(p.ActiveRoles()) == 0 {
			continue
		}
		if user, err := s.users.FindOneById(ctx, p.UserID); err == nil {
			emails = append(emails, user.Email)
		}
	}
	return emails
}
