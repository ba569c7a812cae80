package signalsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "meta_response/internal/api/base/service"
	signaldto "meta_response/internal/api/signal/dto"
	models "meta_response/internal/api/signal/models"
	"meta_response/internal/common"
	"meta_response/internal/filterexpr"
	"meta_response/internal/global"
	"meta_response/internal/logger"
	"meta_response/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SignalFilterService quản lý filter snooze/dedupe của signal.
// Expression được validate bằng filterexpr lúc lưu, không để lỗi ngữ pháp tới ingest.
type SignalFilterService struct {
	*basesvc.BaseServiceMongoImpl[models.SignalFilter]
}

// NewSignalFilterService tạo mới SignalFilterService
func NewSignalFilterService() (*SignalFilterService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.SignalFilters)
	if !exist {
		return nil, fmt.Errorf("failed to get signal_filters collection: %v", common.ErrNotFound)
	}
	return &SignalFilterService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SignalFilter](col),
	}, nil
}

// validateExpression compile cây biểu thức, trả lỗi 400 khi ngữ pháp sai
func validateExpression(expression map[string]interface{}) (string, error) {
	if _, err := filterexpr.CompileTree(expression); err != nil {
		return "", common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}
	return utility.MapToJSON(expression)
}

// Create tạo filter mới sau khi validate expression
func (s *SignalFilterService) Create(ctx context.Context, projectID, creatorID primitive.ObjectID, input *signaldto.SignalFilterCreateInput) (models.SignalFilter, error) {
	var zero models.SignalFilter

	signalID, err := utility.String2ObjectID(input.SignalID)
	if err != nil {
		return zero, common.NewError(common.ErrCodeValidationFormat, "Signal ID không hợp lệ", common.StatusBadRequest, err)
	}
	expression, err := validateExpression(input.Expression)
	if err != nil {
		return zero, err
	}

	filter := models.SignalFilter{
		ProjectID:     projectID,
		SignalID:      signalID,
		Name:          input.Name,
		Expression:    expression,
		Mode:          input.Mode,
		Action:        input.Action,
		WindowSeconds: input.WindowSeconds,
		Expiration:    input.Expiration,
		CreatorID:     creatorID,
	}
	return s.InsertOne(ctx, filter)
}

// Update cập nhật filter; expression mới (nếu có) được validate lại
func (s *SignalFilterService) Update(ctx context.Context, id primitive.ObjectID, input *signaldto.SignalFilterUpdateInput) (models.SignalFilter, error) {
	var zero models.SignalFilter

	set := bson.M{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Expression != nil {
		expression, err := validateExpression(input.Expression)
		if err != nil {
			return zero, err
		}
		set["expression"] = expression
	}
	if input.Mode != "" {
		set["mode"] = input.Mode
	}
	if input.Action != "" {
		set["action"] = input.Action
	}
	if input.WindowSeconds > 0 {
		set["windowSeconds"] = input.WindowSeconds
	}
	if input.Expiration > 0 {
		set["expiration"] = input.Expiration
	}
	if len(set) == 0 {
		return zero, common.NewError(common.ErrCodeValidationInput, "Không có trường nào để cập nhật", common.StatusBadRequest, nil)
	}

	return s.UpdateById(ctx, id, &basesvc.UpdateData{Set: set})
}

// FindForSignal trả về các filter chưa inactive của một signal, theo thứ tự tạo
func (s *SignalFilterService) FindForSignal(ctx context.Context, signalID primitive.ObjectID) ([]models.SignalFilter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.Find(ctx, bson.M{
		"signalId": signalID,
		"mode":     bson.M{"$ne": models.FilterModeInactive},
	}, opts)
}

// RecordMatch tăng bộ đếm khớp của filter (best-effort, phục vụ quan sát rule)
func (s *SignalFilterService) RecordMatch(ctx context.Context, id primitive.ObjectID) {
	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"matchCount": 1}}, nil)
	if err != nil {
		logger.GetAppLogger().WithField("filterId", id.Hex()).Warn("Không tăng được match count của filter")
	}
}

// EvaluateSnooze đánh giá các filter theo thứ tự tạo, trả về filter snooze đầu tiên
// còn hiệu lực mà instance khớp. Filter mode=monitor chỉ được đếm, không đổi kết quả.
// onMatch được gọi cho mọi filter khớp (kể cả monitor) để ghi nhận bộ đếm.
func EvaluateSnooze(filters []models.SignalFilter, row filterexpr.Row, loader filterexpr.RelatedLoader, now time.Time, onMatch func(models.SignalFilter)) *models.SignalFilter {
	for i := range filters {
		filter := filters[i]
		if filter.Mode == models.FilterModeInactive {
			continue
		}

		expr, err := filterexpr.Compile([]byte(filter.Expression))
		if err != nil {
			// Expression đã validate lúc lưu; tới đây nghĩa là dữ liệu bị sửa tay
			logger.GetAppLogger().WithField("filter", filter.Name).
				Warn("Expression của filter không compile được lúc ingest, bỏ qua filter")
			continue
		}
		if !filterexpr.Match(expr, row, loader, filter.Name) {
			continue
		}

		if onMatch != nil {
			onMatch(filter)
		}
		if filter.Mode == models.FilterModeMonitor {
			continue
		}
		if filter.Action != models.FilterActionSnooze {
			continue
		}
		// Expiration 0 nghĩa là không hết hạn
		if filter.Expiration > 0 && filter.Expiration <= now.UnixMilli() {
			continue
		}
		return &filter
	}
	return nil
}
