package signalsvc

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	basesvc "meta_response/internal/api/base/service"
	models "meta_response/internal/api/signal/models"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SignalInstanceService quản lý các signal instance đã ingest
type SignalInstanceService struct {
	*basesvc.BaseServiceMongoImpl[models.SignalInstance]
}

// NewSignalInstanceService tạo mới SignalInstanceService
func NewSignalInstanceService() (*SignalInstanceService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.SignalInstances)
	if !exist {
		return nil, fmt.Errorf("failed to get signal_instances collection: %v", common.ErrNotFound)
	}
	return &SignalInstanceService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SignalInstance](col),
	}, nil
}

// FindByExternalID tìm instance theo idempotency key (signal, externalId)
func (s *SignalInstanceService) FindByExternalID(ctx context.Context, signalID primitive.ObjectID, externalID string) (models.SignalInstance, error) {
	return s.FindOne(ctx, bson.M{"signalId": signalID, "externalId": externalID}, nil)
}

// FindNeedingAttach trả về các instance chưa gắn được case, cho worker retry
func (s *SignalInstanceService) FindNeedingAttach(ctx context.Context, limit int64) ([]models.SignalInstance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	return s.Find(ctx, bson.M{"needsCaseAttach": true}, opts)
}

// FindDegraded trả về các instance bị đánh dấu degraded, cho worker reprocess
func (s *SignalInstanceService) FindDegraded(ctx context.Context, limit int64) ([]models.SignalInstance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	return s.Find(ctx, bson.M{"degraded": true}, opts)
}

// SignalDedupeKeyService quản lý hàng khóa fingerprint dùng cho dedupe
type SignalDedupeKeyService struct {
	*basesvc.BaseServiceMongoImpl[models.SignalDedupeKey]
}

// NewSignalDedupeKeyService tạo mới SignalDedupeKeyService
func NewSignalDedupeKeyService() (*SignalDedupeKeyService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.SignalDedupeKeys)
	if !exist {
		return nil, fmt.Errorf("failed to get signal_dedupe_keys collection: %v", common.ErrNotFound)
	}
	return &SignalDedupeKeyService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SignalDedupeKey](col),
	}, nil
}

// FindKey tìm hàng khóa của (signal, fingerprint)
func (s *SignalDedupeKeyService) FindKey(ctx context.Context, signalID primitive.ObjectID, fingerprint string) (models.SignalDedupeKey, error) {
	return s.FindOne(ctx, bson.M{"signalId": signalID, "fingerprint": fingerprint}, nil)
}

// Touch cập nhật hàng khóa với optimistic lock trên version.
// Trả về common.ErrVersionConflict khi một ingest khác vừa ghi đè.
func (s *SignalDedupeKeyService) Touch(ctx context.Context, key models.SignalDedupeKey, set bson.M) (models.SignalDedupeKey, error) {
	filter := bson.M{
		"signalId":    key.SignalID,
		"fingerprint": key.Fingerprint,
		"version":     key.Version,
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated, err := s.FindOneAndUpdate(ctx, filter, update, opts)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return updated, common.ErrVersionConflict
		}
		return updated, err
	}
	return updated, nil
}

// FingerprintFromValues tính sha1 hex trên các giá trị entity đã sort,
// bất biến với thứ tự đầu vào.
func FingerprintFromValues(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)

	sum := sha1.Sum([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}

// FingerprintFromRaw tính sha1 hex trên canonical JSON của raw payload,
// dùng khi signal không có duplication rule (hoặc rule không chọn ra giá trị nào).
func FingerprintFromRaw(raw map[string]interface{}) (string, error) {
	canonical, err := utility.CanonicalJSON(raw)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}
