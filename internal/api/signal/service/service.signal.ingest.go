package signalsvc

import (
	"context"
	"errors"
	"time"

	pluginsvc "meta_response/internal/api/plugin/service"
	signaldto "meta_response/internal/api/signal/dto"
	models "meta_response/internal/api/signal/models"
	"meta_response/internal/common"
	"meta_response/internal/filterexpr"
	"meta_response/internal/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseSeed là dữ liệu cần để gắn hoặc tạo case cho một instance.
// Định nghĩa ở đây để domain incident không phải import domain signal.
type CaseSeed struct {
	ProjectID        primitive.ObjectID
	Fingerprint      string
	Title            string
	Description      string
	TypeID           primitive.ObjectID
	PriorityID       primitive.ObjectID
	SeverityID       primitive.ObjectID
	OncallServiceRef string
	SignalInstanceID string
}

// CaseBinder do domain incident cung cấp: gắn instance vào case mở còn sống
// theo fingerprint, hoặc tạo case mới với fan-out đầy đủ.
type CaseBinder interface {
	AttachOrCreate(ctx context.Context, seed CaseSeed) (primitive.ObjectID, error)
	IsCaseOpen(ctx context.Context, caseID primitive.ObjectID) (bool, error)
}

const dedupeTouchRetries = 3

// IngestService là pipeline ingest: enrich → extract → fingerprint → dedupe →
// snooze → gắn/tạo case → persist instance.
type IngestService struct {
	signals    *SignalService
	types      *EntityTypeService
	entities   *EntityService
	filters    *SignalFilterService
	instances  *SignalInstanceService
	dedupeKeys *SignalDedupeKeyService
	registry   *pluginsvc.PluginRegistryService
	binder     CaseBinder
}

// NewIngestService tạo pipeline ingest; binder được wire lúc init app
func NewIngestService(binder CaseBinder) (*IngestService, error) {
	signals, err := NewSignalService()
	if err != nil {
		return nil, err
	}
	types, err := NewEntityTypeService()
	if err != nil {
		return nil, err
	}
	entities, err := NewEntityService()
	if err != nil {
		return nil, err
	}
	filters, err := NewSignalFilterService()
	if err != nil {
		return nil, err
	}
	instances, err := NewSignalInstanceService()
	if err != nil {
		return nil, err
	}
	dedupeKeys, err := NewSignalDedupeKeyService()
	if err != nil {
		return nil, err
	}
	registry, err := pluginsvc.GetRegistry()
	if err != nil {
		return nil, err
	}
	return &IngestService{
		signals:    signals,
		types:      types,
		entities:   entities,
		filters:    filters,
		instances:  instances,
		dedupeKeys: dedupeKeys,
		registry:   registry,
		binder:     binder,
	}, nil
}

// Instances cho worker truy cập service instance bên dưới
func (s *IngestService) Instances() *SignalInstanceService {
	return s.instances
}

// Ingest xử lý một signal instance mới. Idempotent theo (signal, externalId).
func (s *IngestService) Ingest(ctx context.Context, projectID primitive.ObjectID, input *signaldto.IngestInput) (models.SignalInstance, error) {
	var zero models.SignalInstance

	signal, err := s.signals.FindByRef(ctx, projectID, input.SignalRef)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return zero, common.NewError(common.ErrCodeValidationInput, "Signal không tồn tại trong project", common.StatusNotFound, nil)
		}
		return zero, err
	}
	if !signal.Enabled {
		return zero, common.NewError(common.ErrCodeBusinessOperation, "Signal đang bị tắt", common.StatusBadRequest, nil)
	}

	// Idempotency: cùng (signal, externalId) trả về instance đã có
	if input.ExternalID != "" {
		existing, err := s.instances.FindByExternalID(ctx, signal.ID, input.ExternalID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return zero, err
		}
	}

	// Bước 1: enrichment (tùy chọn, thất bại không chặn ingest)
	raw, degraded := s.enrich(ctx, projectID, input.Raw)

	// Bước 2: trích xuất entity
	types, err := s.types.FindForSignal(ctx, projectID, signal.ID)
	if err != nil {
		return zero, err
	}
	candidates := ExtractCandidates(raw, types)

	entityRows := make([]filterexpr.Row, 0, len(candidates))
	entityIDs := make([]primitive.ObjectID, 0, len(candidates))
	valuesByType := map[string][]string{}
	for _, candidate := range candidates {
		entity, err := s.entities.LookupOrCreate(ctx, projectID, candidate.EntityType.ID, candidate.Value)
		if err != nil {
			return zero, err
		}
		entityIDs = append(entityIDs, entity.ID)
		entityRows = append(entityRows, filterexpr.Row{
			"type":  candidate.EntityType.Name,
			"value": candidate.Value,
		})
		valuesByType[candidate.EntityType.Name] = append(valuesByType[candidate.EntityType.Name], candidate.Value)
	}

	// Bước 3: fingerprint
	fingerprint, err := computeFingerprint(signal.DuplicationRule, valuesByType, raw)
	if err != nil {
		return zero, common.NewError(common.ErrCodeInternalServer, "Không tính được fingerprint", common.StatusInternalServerError, err)
	}

	instance := models.SignalInstance{
		UID:               uuid.NewString(),
		ProjectID:         projectID,
		SignalID:          signal.ID,
		ExternalID:        input.ExternalID,
		Raw:               raw,
		Fingerprint:       fingerprint,
		EntityIDs:         entityIDs,
		FilterActionTaken: models.FilterActionNone,
		Degraded:          degraded,
	}

	// Bước 4: dedupe trong cửa sổ
	attached, err := s.tryDedupe(ctx, signal, &instance)
	if err != nil {
		return zero, err
	}
	if attached {
		return s.persist(ctx, &instance, input.CreatedAt)
	}

	// Bước 5: đánh giá snooze
	row := buildInstanceRow(signal, raw, fingerprint)
	loader := func(model string) []filterexpr.Row {
		if model == "Entity" {
			return entityRows
		}
		return nil
	}
	filters, err := s.filters.FindForSignal(ctx, signal.ID)
	if err != nil {
		return zero, err
	}
	snoozed := EvaluateSnooze(filters, row, loader, time.Now(), func(matched models.SignalFilter) {
		s.filters.RecordMatch(ctx, matched.ID)
	})
	if snoozed != nil {
		instance.FilterActionTaken = models.FilterActionSnooze
		logger.GetAppLogger().WithField("signal", signal.Variant).WithField("filter", snoozed.Name).
			Info("📡 [INGEST] Instance bị snooze bởi filter")
		return s.persist(ctx, &instance, input.CreatedAt)
	}

	// Bước 7 trước bước 6: persist instance rồi mới gắn case, để thất bại khi
	// gắn case không làm mất instance (worker sẽ retry với case_ref rỗng)
	persisted, err := s.persist(ctx, &instance, input.CreatedAt)
	if err != nil {
		return zero, err
	}

	// Bước 6: gắn hoặc tạo case
	if err := s.AttachCase(ctx, signal, &persisted); err != nil {
		logger.GetErrorLogger().WithField("instance", persisted.UID).WithField("error", err.Error()).
			Error("📡 [INGEST] Gắn case thất bại, sẽ retry theo lịch")
	}
	return persisted, nil
}

// enrich cho raw đi qua plugin signal-enrichment nếu có; lỗi plugin → degraded
func (s *IngestService) enrich(ctx context.Context, projectID primitive.ObjectID, raw map[string]interface{}) (map[string]interface{}, bool) {
	enricher, err := s.registry.SignalEnrichment(ctx, projectID)
	if err != nil {
		if !errors.Is(err, common.ErrPluginUnavailable) {
			logger.GetAppLogger().WithField("error", err.Error()).Warn("📡 [INGEST] Không resolve được plugin enrichment")
			return raw, true
		}
		return raw, false
	}

	enriched, err := enricher.Enrich(ctx, raw)
	if err != nil {
		logger.GetAppLogger().WithField("error", err.Error()).Warn("📡 [INGEST] Enrichment thất bại, tiếp tục với raw gốc")
		return raw, true
	}

	// Merge kết quả enrich vào raw gốc; key trùng lấy giá trị enrich
	merged := make(map[string]interface{}, len(raw)+len(enriched))
	for k, v := range raw {
		merged[k] = v
	}
	for k, v := range enriched {
		merged[k] = v
	}
	return merged, false
}

// computeFingerprint chọn nguồn fingerprint: giá trị entity theo duplication rule,
// rơi về canonical JSON của raw khi rule vắng mặt hoặc không chọn ra giá trị nào.
func computeFingerprint(rule *models.DuplicationRule, valuesByType map[string][]string, raw map[string]interface{}) (string, error) {
	if rule != nil && len(rule.TagTypes) > 0 {
		var values []string
		for _, tagType := range rule.TagTypes {
			values = append(values, valuesByType[tagType]...)
		}
		if len(values) > 0 {
			return FingerprintFromValues(values), nil
		}
	}
	return FingerprintFromRaw(raw)
}

// buildInstanceRow dựng row chính cho filter engine: raw payload cộng metadata
func buildInstanceRow(signal models.Signal, raw map[string]interface{}, fingerprint string) filterexpr.Row {
	row := filterexpr.Row{}
	for k, v := range raw {
		row[k] = v
	}
	row["signal"] = signal.Name
	row["variant"] = signal.Variant
	row["fingerprint"] = fingerprint
	return row
}

// tryDedupe kiểm tra cửa sổ dedupe. Trả về true khi instance được gắn vào case cũ.
// Ghi hàng khóa với optimistic lock để hai ingest cùng fingerprint serialize.
func (s *IngestService) tryDedupe(ctx context.Context, signal models.Signal, instance *models.SignalInstance) (bool, error) {
	window := signal.DuplicationRule.Window()
	now := time.Now().UnixMilli()

	for attempt := 0; attempt < dedupeTouchRetries; attempt++ {
		key, err := s.dedupeKeys.FindKey(ctx, signal.ID, instance.Fingerprint)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return false, nil
			}
			return false, err
		}

		withinWindow := now-key.LastSeenAt <= window*1000
		if !withinWindow || key.CaseID.IsZero() {
			return false, nil
		}
		open, err := s.caseOpen(ctx, key.CaseID)
		if err != nil {
			return false, err
		}
		if !open {
			return false, nil
		}

		_, err = s.dedupeKeys.Touch(ctx, key, bson.M{
			"lastSeenAt":  now,
			"instanceUid": instance.UID,
		})
		if err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				continue
			}
			return false, err
		}

		instance.CaseID = key.CaseID
		instance.FilterActionTaken = models.FilterActionDeduplicate
		return true, nil
	}
	return false, common.ErrVersionConflict
}

func (s *IngestService) caseOpen(ctx context.Context, caseID primitive.ObjectID) (bool, error) {
	if s.binder == nil {
		return false, nil
	}
	return s.binder.IsCaseOpen(ctx, caseID)
}

// persist ghi instance; createdAt của producer (nếu có) ghi đè timestamp hệ thống
func (s *IngestService) persist(ctx context.Context, instance *models.SignalInstance, producerCreatedAt int64) (models.SignalInstance, error) {
	created, err := s.instances.InsertOne(ctx, *instance)
	if err != nil {
		return created, err
	}
	if producerCreatedAt > 0 && producerCreatedAt != created.CreatedAt {
		created, err = s.instances.UpdateById(ctx, created.ID, bson.M{"createdAt": producerCreatedAt})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// AttachCase chạy bước gắn/tạo case cho một instance đã persist.
// Worker signal-reattach-retry cũng gọi hàm này.
func (s *IngestService) AttachCase(ctx context.Context, signal models.Signal, instance *models.SignalInstance) error {
	if s.binder == nil {
		return common.NewError(common.ErrCodeInternalServer, "Case binder chưa được cấu hình", common.StatusInternalServerError, nil)
	}

	title, _ := instance.Raw["title"].(string)
	if title == "" {
		title = signal.Name
	}
	description, _ := instance.Raw["description"].(string)

	caseID, err := s.binder.AttachOrCreate(ctx, CaseSeed{
		ProjectID:        instance.ProjectID,
		Fingerprint:      instance.Fingerprint,
		Title:            title,
		Description:      description,
		TypeID:           signal.CaseTypeDefault,
		PriorityID:       signal.CasePriorityDefault,
		SeverityID:       signal.CaseSeverityDefault,
		OncallServiceRef: signal.OncallServiceRef,
		SignalInstanceID: instance.UID,
	})
	if err != nil {
		_, markErr := s.instances.UpdateById(ctx, instance.ID, bson.M{"needsCaseAttach": true})
		if markErr != nil {
			logger.GetErrorLogger().WithField("instance", instance.UID).Error("Không đánh dấu được instance cần retry gắn case")
		}
		return err
	}

	instance.CaseID = caseID
	instance.NeedsCaseAttach = false
	_, err = s.instances.UpdateById(ctx, instance.ID, bson.M{"caseId": caseID, "needsCaseAttach": false})
	if err != nil {
		return err
	}

	// Ghi hàng khóa dedupe cho fingerprint này để các instance sau trong cửa sổ gắn vào
	now := time.Now().UnixMilli()
	window := signal.DuplicationRule.Window()
	key, err := s.dedupeKeys.FindKey(ctx, signal.ID, instance.Fingerprint)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		_, err = s.dedupeKeys.InsertOne(ctx, models.SignalDedupeKey{
			ProjectID:     instance.ProjectID,
			SignalID:      signal.ID,
			Fingerprint:   instance.Fingerprint,
			CaseID:        caseID,
			InstanceUID:   instance.UID,
			LastSeenAt:    now,
			WindowSeconds: window,
			Version:       1,
		})
		if err != nil && !errors.Is(err, common.ErrDuplicate) {
			return err
		}
		return nil
	}

	_, err = s.dedupeKeys.Touch(ctx, key, bson.M{
		"caseId":      caseID,
		"instanceUid": instance.UID,
		"lastSeenAt":  now,
	})
	if err != nil && !errors.Is(err, common.ErrVersionConflict) {
		return err
	}
	return nil
}

// RetryPendingAttaches xử lý các instance còn case_ref rỗng (worker gọi định kỳ)
func (s *IngestService) RetryPendingAttaches(ctx context.Context, limit int64) (int, error) {
	pending, err := s.instances.FindNeedingAttach(ctx, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range pending {
		instance := pending[i]
		signal, err := s.signals.FindOneById(ctx, instance.SignalID)
		if err != nil {
			logger.GetErrorLogger().WithField("instance", instance.UID).Warn("Signal của instance không còn, bỏ qua retry")
			continue
		}
		if err := s.AttachCase(ctx, signal, &instance); err != nil {
			logger.GetAppLogger().WithField("instance", instance.UID).Warn("Retry gắn case vẫn thất bại")
			continue
		}
		done++
	}
	return done, nil
}

// ReprocessDegraded chạy lại enrich + extract cho các instance degraded
func (s *IngestService) ReprocessDegraded(ctx context.Context, limit int64) (int, error) {
	degraded, err := s.instances.FindDegraded(ctx, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range degraded {
		instance := degraded[i]
		raw, stillDegraded := s.enrich(ctx, instance.ProjectID, instance.Raw)
		if stillDegraded {
			continue
		}

		types, err := s.types.FindForSignal(ctx, instance.ProjectID, instance.SignalID)
		if err != nil {
			return done, err
		}
		candidates := ExtractCandidates(raw, types)
		entityIDs := make([]primitive.ObjectID, 0, len(candidates))
		for _, candidate := range candidates {
			entity, err := s.entities.LookupOrCreate(ctx, instance.ProjectID, candidate.EntityType.ID, candidate.Value)
			if err != nil {
				return done, err
			}
			entityIDs = append(entityIDs, entity.ID)
		}

		_, err = s.instances.UpdateById(ctx, instance.ID, bson.M{
			"raw":       raw,
			"entityIds": entityIDs,
			"degraded":  false,
		})
		if err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}
