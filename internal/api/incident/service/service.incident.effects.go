package incidentsvc

import (
	"context"
	"fmt"

	models "meta_response/internal/api/incident/models"
	"meta_response/internal/api/plugin/capability"
	pluginsvc "meta_response/internal/api/plugin/service"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EffectEngine chạy chuỗi side effect ra hệ thống ngoài khi case/incident được
// tạo hoặc chuyển trạng thái. Mỗi effect là best-effort: thất bại chỉ ghi event
// effect_failed vào timeline và đi tiếp, không chặn transition.
type EffectEngine struct {
	registry *pluginsvc.PluginRegistryService
	events   *EventService

	caseTypes          *CaseTypeService
	casePriorities     *CasePriorityService
	caseSeverities     *CaseSeverityService
	incidentTypes      *IncidentTypeService
	incidentPriorities *IncidentPriorityService
	incidentSeverities *IncidentSeverityService
}

// NewEffectEngine tạo mới EffectEngine
func NewEffectEngine() (*EffectEngine, error) {
	registry, err := pluginsvc.GetRegistry()
	if err != nil {
		return nil, err
	}
	events, err := NewEventService()
	if err != nil {
		return nil, err
	}
	caseTypes, err := NewCaseTypeService()
	if err != nil {
		return nil, err
	}
	casePriorities, err := NewCasePriorityService()
	if err != nil {
		return nil, err
	}
	caseSeverities, err := NewCaseSeverityService()
	if err != nil {
		return nil, err
	}
	incidentTypes, err := NewIncidentTypeService()
	if err != nil {
		return nil, err
	}
	incidentPriorities, err := NewIncidentPriorityService()
	if err != nil {
		return nil, err
	}
	incidentSeverities, err := NewIncidentSeverityService()
	if err != nil {
		return nil, err
	}
	return &EffectEngine{
		registry:           registry,
		events:             events,
		caseTypes:          caseTypes,
		casePriorities:     casePriorities,
		caseSeverities:     caseSeverities,
		incidentTypes:      incidentTypes,
		incidentPriorities: incidentPriorities,
		incidentSeverities: incidentSeverities,
	}, nil
}

// effectSubject định danh chủ thể để ghi event
type effectSubject struct {
	projectID  primitive.ObjectID
	caseID     primitive.ObjectID
	incidentID primitive.ObjectID
}

// run thực thi một effect best-effort và ghi kết quả vào timeline
func (e *EffectEngine) run(ctx context.Context, subject effectSubject, name string, fn func() error) bool {
	err := fn()

	kind := models.EventKindEffect
	message := name
	var details map[string]interface{}
	if err != nil {
		kind = models.EventKindEffectFailed
		message = fmt.Sprintf("%s: %v", name, err)
		details = map[string]interface{}{"effect": name, "error": err.Error()}
		logger.GetErrorLogger().WithField("effect", name).WithField("error", err.Error()).
			Warn("Effect thất bại, bỏ qua và đi tiếp")
	}

	if !subject.caseID.IsZero() {
		e.events.RecordForCase(ctx, subject.projectID, subject.caseID, kind, message, details)
	} else {
		e.events.RecordForIncident(ctx, subject.projectID, subject.incidentID, kind, message, details)
	}
	return err == nil
}

// snapshotCase chụp ảnh case để gửi plugin. Visibility restricted thì title
// và description bị thay bằng tên type để không lộ nội dung ra hệ thống ngoài.
func (e *EffectEngine) snapshotCase(ctx context.Context, c *models.Case) capability.SubjectSnapshot {
	snapshot := capability.SubjectSnapshot{
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Visibility:  c.Visibility,
	}
	if caseType, err := e.caseTypes.FindOneById(ctx, c.TypeID); err == nil {
		snapshot.Type = caseType.Name
	}
	if priority, err := e.casePriorities.FindOneById(ctx, c.PriorityID); err == nil {
		snapshot.Priority = priority.Name
	}
	if severity, err := e.caseSeverities.FindOneById(ctx, c.SeverityID); err == nil {
		snapshot.Severity = severity.Name
	}
	if c.Visibility == models.VisibilityRestricted {
		snapshot.Title = snapshot.Type
		snapshot.Description = "Nội dung bị hạn chế"
	}
	return snapshot
}

func (e *EffectEngine) snapshotIncident(ctx context.Context, inc *models.Incident) capability.SubjectSnapshot {
	snapshot := capability.SubjectSnapshot{
		Title:       inc.Title,
		Description: inc.Description,
		Status:      inc.Status,
		Visibility:  inc.Visibility,
	}
	if incidentType, err := e.incidentTypes.FindOneById(ctx, inc.TypeID); err == nil {
		snapshot.Type = incidentType.Name
	}
	if priority, err := e.incidentPriorities.FindOneById(ctx, inc.PriorityID); err == nil {
		snapshot.Priority = priority.Name
	}
	if severity, err := e.incidentSeverities.FindOneById(ctx, inc.SeverityID); err == nil {
		snapshot.Severity = severity.Name
	}
	if inc.Visibility == models.VisibilityRestricted {
		snapshot.Title = snapshot.Type
		snapshot.Description = "Nội dung bị hạn chế"
	}
	return snapshot
}

// CaseCreated chạy fan-out khi case mới được tạo, mutate các ref trên c.
// Thứ tự cố định: ticket → channel → folder → thông báo.
func (e *EffectEngine) CaseCreated(ctx context.Context, c *models.Case, memberEmails []string) {
	subject := effectSubject{projectID: c.ProjectID, caseID: c.ID}
	snapshot := e.snapshotCase(ctx, c)

	e.run(ctx, subject, "tạo ticket", func() error {
		ticket, err := e.registry.Ticket(ctx, c.ProjectID)
		if err != nil {
			return err
		}
		ref, err := ticket.CreateTicket(ctx, snapshot)
		if err != nil {
			return err
		}
		c.TicketRef = ref.ResourceID
		c.TicketWeblink = ref.Weblink
		c.Name = ref.ResourceID
		return nil
	})

	if c.DedicatedChannel {
		e.run(ctx, subject, "tạo kênh hội thoại", func() error {
			chat, err := e.registry.Chat(ctx, c.ProjectID)
			if err != nil {
				return err
			}
			ref, err := chat.CreateChannel(ctx, channelName("case", c.Name, c.ID), memberEmails)
			if err != nil {
				return err
			}
			c.ConversationRef = ref.ID
			return nil
		})
	}

	e.run(ctx, subject, "tạo thư mục lưu trữ", func() error {
		storage, err := e.registry.Storage(ctx, c.ProjectID)
		if err != nil {
			return err
		}
		ref, err := storage.CreateFolder(ctx, "", folderName("case", c.Name, c.ID), memberEmails)
		if err != nil {
			return err
		}
		c.StorageRef = ref.ID
		return nil
	})

	e.notifyCase(ctx, subject, c, "Case mới được tạo: "+snapshot.Title)
}

// CaseUpdated đồng bộ ticket ngoài sau khi case đổi trạng thái hoặc nội dung
func (e *EffectEngine) CaseUpdated(ctx context.Context, c *models.Case) {
	if c.TicketRef == "" {
		return
	}
	subject := effectSubject{projectID: c.ProjectID, caseID: c.ID}
	snapshot := e.snapshotCase(ctx, c)
	e.run(ctx, subject, "cập nhật ticket", func() error {
		ticket, err := e.registry.Ticket(ctx, c.ProjectID)
		if err != nil {
			return err
		}
		return ticket.UpdateTicket(ctx, c.TicketRef, snapshot)
	})
}

// CaseClosed chạy fan-out đóng: sync ticket lần cuối và lưu trữ kênh hội thoại
func (e *EffectEngine) CaseClosed(ctx context.Context, c *models.Case) {
	subject := effectSubject{projectID: c.ProjectID, caseID: c.ID}
	e.CaseUpdated(ctx, c)

	if c.ConversationRef != "" {
		e.run(ctx, subject, "lưu trữ kênh hội thoại", func() error {
			chat, err := e.registry.Chat(ctx, c.ProjectID)
			if err != nil {
				return err
			}
			return chat.ArchiveChannel(ctx, c.ConversationRef)
		})
	}
}

func (e *EffectEngine) notifyCase(ctx context.Context, subject effectSubject, c *models.Case, text string) {
	if c.ConversationRef == "" {
		return
	}
	e.run(ctx, subject, "gửi thông báo", func() error {
		chat, err := e.registry.Chat(ctx, c.ProjectID)
		if err != nil {
			return err
		}
		return chat.SendMessage(ctx, c.ConversationRef, text, "", "notification")
	})
}

// IncidentCreated chạy fan-out khi incident được tạo (thường do escalate).
// Thứ tự: ticket → channel → conference → folder → group → thông báo.
func (e *EffectEngine) IncidentCreated(ctx context.Context, inc *models.Incident, memberEmails []string) {
	subject := effectSubject{projectID: inc.ProjectID, incidentID: inc.ID}
	snapshot := e.snapshotIncident(ctx, inc)

	e.run(ctx, subject, "tạo ticket", func() error {
		ticket, err := e.registry.Ticket(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		ref, err := ticket.CreateTicket(ctx, snapshot)
		if err != nil {
			return err
		}
		inc.TicketRef = ref.ResourceID
		inc.TicketWeblink = ref.Weblink
		inc.Name = ref.ResourceID
		return nil
	})

	e.run(ctx, subject, "tạo kênh hội thoại", func() error {
		chat, err := e.registry.Chat(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		ref, err := chat.CreateChannel(ctx, channelName("incident", inc.Name, inc.ID), memberEmails)
		if err != nil {
			return err
		}
		inc.ConversationRef = ref.ID
		return nil
	})

	e.run(ctx, subject, "tạo phòng họp", func() error {
		conference, err := e.registry.Conference(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		ref, err := conference.CreateConference(ctx, snapshot.Title)
		if err != nil {
			return err
		}
		inc.ConferenceRef = ref.ID
		return nil
	})

	e.run(ctx, subject, "tạo thư mục lưu trữ", func() error {
		storage, err := e.registry.Storage(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		ref, err := storage.CreateFolder(ctx, "", folderName("incident", inc.Name, inc.ID), memberEmails)
		if err != nil {
			return err
		}
		inc.StorageRef = ref.ID
		return nil
	})

	e.run(ctx, subject, "tạo nhóm thành viên", func() error {
		groups, err := e.registry.ParticipantGroup(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		_, err = groups.CreateGroup(ctx, channelName("incident", inc.Name, inc.ID), memberEmails)
		return err
	})

	e.notifyIncident(ctx, subject, inc, "Incident mới được tạo: "+snapshot.Title)
}

// IncidentUpdated đồng bộ ticket ngoài sau khi incident thay đổi
func (e *EffectEngine) IncidentUpdated(ctx context.Context, inc *models.Incident) {
	if inc.TicketRef == "" {
		return
	}
	subject := effectSubject{projectID: inc.ProjectID, incidentID: inc.ID}
	snapshot := e.snapshotIncident(ctx, inc)
	e.run(ctx, subject, "cập nhật ticket", func() error {
		ticket, err := e.registry.Ticket(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		return ticket.UpdateTicket(ctx, inc.TicketRef, snapshot)
	})
}

// IncidentClosed sync ticket lần cuối và lưu trữ kênh hội thoại
func (e *EffectEngine) IncidentClosed(ctx context.Context, inc *models.Incident) {
	subject := effectSubject{projectID: inc.ProjectID, incidentID: inc.ID}
	e.IncidentUpdated(ctx, inc)

	if inc.ConversationRef != "" {
		e.run(ctx, subject, "lưu trữ kênh hội thoại", func() error {
			chat, err := e.registry.Chat(ctx, inc.ProjectID)
			if err != nil {
				return err
			}
			return chat.ArchiveChannel(ctx, inc.ConversationRef)
		})
	}
}

// IncidentReopened tạo lại kênh hội thoại nếu kênh cũ đã bị lưu trữ
func (e *EffectEngine) IncidentReopened(ctx context.Context, inc *models.Incident, memberEmails []string) {
	subject := effectSubject{projectID: inc.ProjectID, incidentID: inc.ID}
	e.run(ctx, subject, "mở lại kênh hội thoại", func() error {
		chat, err := e.registry.Chat(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		ref, err := chat.CreateChannel(ctx, channelName("incident", inc.Name, inc.ID), memberEmails)
		if err != nil {
			return err
		}
		inc.ConversationRef = ref.ID
		return nil
	})
	e.IncidentUpdated(ctx, inc)
}

func (e *EffectEngine) notifyIncident(ctx context.Context, subject effectSubject, inc *models.Incident, text string) {
	if inc.ConversationRef == "" {
		return
	}
	e.run(ctx, subject, "gửi thông báo", func() error {
		chat, err := e.registry.Chat(ctx, inc.ProjectID)
		if err != nil {
			return err
		}
		return chat.SendMessage(ctx, inc.ConversationRef, text, "", "notification")
	})
}

// channelName sinh tên kênh/nhóm: ưu tiên id ticket ngoài, fallback ObjectID
func channelName(kind, externalName string, id primitive.ObjectID) string {
	if externalName != "" {
		return kind + "-" + externalName
	}
	return kind + "-" + id.Hex()
}

func folderName(kind, externalName string, id primitive.ObjectID) string {
	return channelName(kind, externalName, id)
}
