package worker

import (
	"context"
	"fmt"
	"time"

	authmodels "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	basesvc "meta_response/internal/api/base/service"
	costsvc "meta_response/internal/api/cost/service"
	incidentmodels "meta_response/internal/api/incident/models"
	incidentsvc "meta_response/internal/api/incident/service"
	pluginsvc "meta_response/internal/api/plugin/service"
	signalsvc "meta_response/internal/api/signal/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// Tên các task định kỳ của platform
const (
	TaskCostRecompute         = "cost-recompute"
	TaskIncidentFeedbackDaily = "incident-feedback-daily"
	TaskOncallFeedbackUCAN    = "oncall-shift-feedback-ucan"
	TaskOncallFeedbackEMEA    = "oncall-shift-feedback-emea"
	TaskServiceFeedbackRemind = "service-feedback-reminder"
	TaskSignalReattachRetry   = "signal-reattach-retry"
	oncallFeedbackReminderLag = 2 * time.Hour
	incidentFeedbackLookback  = 24 * time.Hour
)

// responseTasks gom các service mà task cần; scheduler chỉ giữ closure
type responseTasks struct {
	registry  *pluginsvc.PluginRegistryService
	engine    *costsvc.CostEngineService
	incidents *basesvc.BaseServiceMongoImpl[incidentmodels.Incident]
	feedbacks *incidentsvc.IncidentFeedbackService
	reminders *incidentsvc.FeedbackReminderService
	roles     *incidentsvc.IncidentRoleService
	users     *authsvc.UserService
	ingest    *signalsvc.IngestService
}

// RegisterResponseTasks đăng ký đủ bộ task định kỳ vào scheduler.
// IngestService nhận từ ngoài vì nó đã được buộc với case binder lúc khởi động.
func RegisterResponseTasks(s *Scheduler, ingest *signalsvc.IngestService) error {
	registry, err := pluginsvc.GetRegistry()
	if err != nil {
		return fmt.Errorf("failed to get plugin registry: %w", err)
	}
	engine, err := costsvc.GetCostEngine()
	if err != nil {
		return fmt.Errorf("failed to get cost engine: %w", err)
	}
	incidentCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Incidents)
	if !exist {
		return fmt.Errorf("failed to get incidents collection: %v", common.ErrNotFound)
	}
	feedbacks, err := incidentsvc.NewIncidentFeedbackService()
	if err != nil {
		return err
	}
	reminders, err := incidentsvc.NewFeedbackReminderService()
	if err != nil {
		return err
	}
	roles, err := incidentsvc.NewIncidentRoleService()
	if err != nil {
		return err
	}
	users, err := authsvc.NewUserService()
	if err != nil {
		return err
	}

	tasks := &responseTasks{
		registry:  registry,
		engine:    engine,
		incidents: basesvc.NewBaseServiceMongo[incidentmodels.Incident](incidentCol),
		feedbacks: feedbacks,
		reminders: reminders,
		roles:     roles,
		users:     users,
		ingest:    ingest,
	}

	cfg := global.ServerConfig
	s.AddTask(TaskCostRecompute, EverySchedule(time.Duration(cfg.CostRecomputeMinutes)*time.Minute), tasks.costRecompute)
	s.AddTask(TaskIncidentFeedbackDaily, DailySchedule(18, 0), tasks.incidentFeedbackDaily)
	s.AddTask(TaskOncallFeedbackUCAN, DailySchedule(16, 0), tasks.oncallShiftFeedback)
	s.AddTask(TaskOncallFeedbackEMEA, DailySchedule(6, 0), tasks.oncallShiftFeedback)
	s.AddTask(TaskServiceFeedbackRemind, EverySchedule(time.Duration(cfg.ReminderSweepMinutes)*time.Minute), tasks.reminderSweep)
	s.AddGlobalTask(TaskSignalReattachRetry, EverySchedule(time.Duration(cfg.SignalReattachMinutes)*time.Minute), tasks.signalReattach)
	return nil
}

// costRecompute quét mọi subject chưa đóng của project và tính lại chi phí
func (t *responseTasks) costRecompute(ctx context.Context, project authmodels.Project) error {
	count, err := t.engine.RecomputeOpenSubjects(ctx, project.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"project": project.ID.Hex(),
			"count":   count,
		}).Info("💰 [COST_RECOMPUTE] Đã tính lại chi phí")
	}
	return nil
}

// incidentFeedbackDaily gửi digest email cho commander của các incident đóng
// trong 24 giờ qua mà chưa gửi phản hồi
func (t *responseTasks) incidentFeedbackDaily(ctx context.Context, project authmodels.Project) error {
	if !project.RequireIncidentFeedback {
		return nil
	}

	since := time.Now().Add(-incidentFeedbackLookback).UnixMilli()
	closed, err := t.incidents.Find(ctx, bson.M{
		"projectId": project.ID,
		"status":    incidentmodels.IncidentStatusClosed,
		"closedAt":  bson.M{"$gte": since},
	}, nil)
	if err != nil {
		return err
	}
	if len(closed) == 0 {
		return nil
	}

	// Gom incident còn thiếu phản hồi theo email commander
	pending := map[string][]string{}
	for _, incident := range closed {
		if incident.CommanderID.IsZero() {
			continue
		}
		submitted, err := t.feedbacks.FindForIncident(ctx, incident.ID)
		if err != nil {
			return err
		}
		done := false
		for _, feedback := range submitted {
			if feedback.UserID == incident.CommanderID {
				done = true
				break
			}
		}
		if done {
			continue
		}
		commander, err := t.users.FindOneById(ctx, incident.CommanderID)
		if err != nil {
			logger.GetAppLogger().WithField("incident", incident.ID.Hex()).Warn("📧 [FEEDBACK_DIGEST] Không tìm thấy commander, bỏ qua")
			continue
		}
		pending[commander.Email] = append(pending[commander.Email], incident.Title)
	}
	if len(pending) == 0 {
		return nil
	}

	email, err := t.registry.Email(ctx, project.ID)
	if err != nil {
		return err
	}
	for to, titles := range pending {
		if err := email.SendEmail(ctx, []string{to}, "Phản hồi incident đang chờ", "incident_feedback_digest", "digest", map[string]interface{}{
			"incidents": titles,
		}); err != nil {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("📧 [FEEDBACK_DIGEST] Gửi digest thất bại")
		}
	}
	return nil
}

// oncallShiftFeedback hỏi oncall provider xem ai vừa hết ca; người vừa hết ca
// nhận tin nhắn xin phản hồi và một reminder chờ nếu không trả lời
func (t *responseTasks) oncallShiftFeedback(ctx context.Context, project authmodels.Project) error {
	oncall, err := t.registry.Oncall(ctx, project.ID)
	if err != nil {
		return err
	}
	chat, err := t.registry.Chat(ctx, project.ID)
	if err != nil {
		return err
	}

	for _, serviceRef := range t.serviceRefs(ctx, project) {
		offShift, err := oncall.DidJustGoOffShift(ctx, serviceRef)
		if err != nil || !offShift {
			continue
		}
		shift, err := oncall.Current(ctx, serviceRef)
		if err != nil || shift.Email == "" {
			continue
		}

		message := "Ca trực của bạn vừa kết thúc. Hãy dành vài phút gửi phản hồi về ca trực."
		if err := chat.SendDirect(ctx, shift.Email, message); err != nil {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("🔔 [ONCALL_FEEDBACK] Gửi tin nhắn thất bại")
			continue
		}
		if _, err := t.reminders.Schedule(ctx, incidentmodels.FeedbackReminder{
			ProjectID:  project.ID,
			Email:      shift.Email,
			ServiceRef: serviceRef,
			Message:    message,
		}, oncallFeedbackReminderLag); err != nil {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("🔔 [ONCALL_FEEDBACK] Không tạo được reminder")
		}
	}
	return nil
}

// serviceRefs trả về các oncall service distinct từ policy role đang bật
func (t *responseTasks) serviceRefs(ctx context.Context, project authmodels.Project) []string {
	policies, err := t.roles.Find(ctx, bson.M{
		"projectId":  project.ID,
		"enabled":    true,
		"serviceRef": bson.M{"$ne": ""},
	}, nil)
	if err != nil {
		logger.GetAppLogger().WithField("error", err.Error()).Warn("🔔 [ONCALL_FEEDBACK] Không đọc được danh sách policy")
		return nil
	}

	seen := map[string]bool{}
	refs := make([]string, 0, len(policies))
	for _, policy := range policies {
		if policy.ServiceRef == "" || seen[policy.ServiceRef] {
			continue
		}
		seen[policy.ServiceRef] = true
		refs = append(refs, policy.ServiceRef)
	}
	return refs
}

// reminderSweep gửi các reminder tới hạn rồi đánh dấu đã gửi
func (t *responseTasks) reminderSweep(ctx context.Context, project authmodels.Project) error {
	due, err := t.reminders.FindDue(ctx, project.ID, time.Now(), int64(global.ServerConfig.WorkerBatchSize))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	chat, err := t.registry.Chat(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, reminder := range due {
		if err := chat.SendDirect(ctx, reminder.Email, reminder.Message); err != nil {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("🔔 [REMINDER_SWEEP] Gửi reminder thất bại, giữ lại cho lần sau")
			continue
		}
		if err := t.reminders.MarkSent(ctx, reminder.ID); err != nil {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("🔔 [REMINDER_SWEEP] Không đánh dấu được reminder")
		}
	}
	return nil
}

// signalReattach retry các signal instance chờ gắn case và xử lý lại
// các instance bị degrade do enrichment lỗi
func (t *responseTasks) signalReattach(ctx context.Context) error {
	batch := int64(global.ServerConfig.WorkerBatchSize)

	retried, err := t.ingest.RetryPendingAttaches(ctx, batch)
	if err != nil {
		return err
	}
	reprocessed, err := t.ingest.ReprocessDegraded(ctx, batch)
	if err != nil {
		return err
	}
	if retried > 0 || reprocessed > 0 {
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"retried":     retried,
			"reprocessed": reprocessed,
		}).Info("📡 [SIGNAL_REATTACH] Đã xử lý lại signal instance")
	}
	return nil
}
