package basehdl

// Package basehdl chứa base handler generic cho các CRUD endpoint.
// Các domain handler embed BaseHandler để thừa kế toàn bộ CRUD cơ bản
// và chỉ viết thêm các endpoint nghiệp vụ riêng.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	basesvc "meta_response/internal/api/base/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// FilterOptions cấu hình cho việc validate filter từ query string
type FilterOptions struct {
	DeniedFields     []string // Các trường bị cấm filter (bảo mật)
	AllowedOperators []string // Các operator MongoDB được phép
	MaxFields        int      // Số lượng field tối đa trong một filter
}

// BaseHandler là base handler cho các Fiber handler, cung cấp các chức năng CRUD cơ bản.
//
// Type parameters:
// - T: Kiểu dữ liệu của model
// - CreateInput: Kiểu dữ liệu của input khi tạo mới
// - UpdateInput: Kiểu dữ liệu của input khi cập nhật
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T]
	filterOptions FilterOptions
}

// NewBaseHandler tạo mới một BaseHandler với BaseService được cung cấp
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: baseService,
		filterOptions: FilterOptions{
			DeniedFields:     []string{"password", "token", "secret", "key", "hash", "config"},
			AllowedOperators: []string{"$eq", "$ne", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"},
			MaxFields:        10,
		},
	}
}

// ====================================
// PROJECT SCOPING
// ====================================

// hasProjectIDField kiểm tra model có field ProjectID không (dùng reflection).
// Field này dùng để scope dữ liệu theo project đang hoạt động.
func (h *BaseHandler[T, CreateInput, UpdateInput]) hasProjectIDField() bool {
	var zero T
	val := reflect.ValueOf(zero)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return false
	}
	return val.FieldByName("ProjectID").IsValid()
}

// GetActiveProjectID lấy active project ID từ context (middleware đã set)
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetActiveProjectID(c fiber.Ctx) *primitive.ObjectID {
	projIDStr, ok := c.Locals("project_id").(string)
	if !ok || projIDStr == "" {
		return nil
	}
	projID, err := primitive.ObjectIDFromHex(projIDStr)
	if err != nil {
		return nil
	}
	return &projID
}

// SetProjectID gán projectId vào model nếu model có field ProjectID và chưa có giá trị.
// Giá trị từ request body được ưu tiên, không override.
func (h *BaseHandler[T, CreateInput, UpdateInput]) SetProjectID(model interface{}, projID primitive.ObjectID) {
	if !h.hasProjectIDField() || projID.IsZero() {
		return
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	field := val.FieldByName("ProjectID")
	if !field.IsValid() || !field.CanSet() {
		return
	}

	if field.Kind() == reflect.Ptr {
		if !field.IsNil() {
			current := field.Interface().(*primitive.ObjectID)
			if current != nil && !current.IsZero() {
				return
			}
		}
		field.Set(reflect.ValueOf(&projID))
		return
	}

	current := field.Interface().(primitive.ObjectID)
	if !current.IsZero() {
		return
	}
	field.Set(reflect.ValueOf(projID))
}

// GetProjectIDFromModel lấy projectId từ model (dùng reflection)
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetProjectIDFromModel(model interface{}) *primitive.ObjectID {
	if !h.hasProjectIDField() {
		return nil
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	field := val.FieldByName("ProjectID")
	if !field.IsValid() {
		return nil
	}

	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return nil
		}
		projID := field.Interface().(*primitive.ObjectID)
		if projID != nil && !projID.IsZero() {
			return projID
		}
		return nil
	}

	projID := field.Interface().(primitive.ObjectID)
	if projID.IsZero() {
		return nil
	}
	return &projID
}

// ApplyProjectFilter thêm điều kiện projectId vào filter.
// CHỈ áp dụng nếu model có field ProjectID và context có active project.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ApplyProjectFilter(c fiber.Ctx, baseFilter bson.M) bson.M {
	if !h.hasProjectIDField() {
		return baseFilter
	}

	projID := h.GetActiveProjectID(c)
	if projID == nil {
		return baseFilter
	}

	projFilter := bson.M{"projectId": *projID}
	if len(baseFilter) == 0 {
		return projFilter
	}
	return bson.M{"$and": []bson.M{baseFilter, projFilter}}
}

// ValidateProjectAccess kiểm tra document thuộc active project không.
// Model không có ProjectID hoặc context không có active project thì bỏ qua.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateProjectAccess(c fiber.Ctx, documentID string) error {
	if !h.hasProjectIDField() {
		return nil
	}
	activeProjID := h.GetActiveProjectID(c)
	if activeProjID == nil {
		return nil
	}

	id, err := utility.String2ObjectID(documentID)
	if err != nil {
		return common.NewError(common.ErrCodeValidationInput, "ID không hợp lệ", common.StatusBadRequest, err)
	}

	doc, err := h.BaseService.FindOneById(c.Context(), id)
	if err != nil {
		return err
	}

	docProjID := h.GetProjectIDFromModel(doc)
	if docProjID == nil {
		return nil
	}
	if *docProjID != *activeProjID {
		return common.NewError(common.ErrCodeAuth, "Không có quyền truy cập dữ liệu của project khác", common.StatusForbidden, nil)
	}
	return nil
}

// ====================================
// PARSE & VALIDATE
// ====================================

// ParseRequestBody parse dữ liệu từ request body.
// Sử dụng json.Decoder với UseNumber() để xử lý chính xác các số.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ParseRequestParams parse và validate các tham số từ URI
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestParams(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().URI(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ValidateInput validate input với validator từ global (struct tag validate)
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ====================================
// FILTER & OPTIONS
// ====================================

// ProcessFilter xử lý và validate filter từ query string (?filter={...})
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	var filter map[string]interface{}

	filterStr := c.Query("filter", "{}")
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không đúng định dạng JSON. Chi tiết lỗi: %v", err),
			common.StatusBadRequest,
			err,
		)
	}

	filter = h.normalizeFilter(filter)

	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// normalizeFilter chuyển đổi các string có format ObjectId thành ObjectID.
// Áp dụng cho các trường có tên kết thúc bằng "Id" hoặc "ID".
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	if filter == nil {
		return filter
	}
	normalized := make(map[string]interface{}, len(filter))
	for field, value := range filter {
		fieldLower := strings.ToLower(field)
		isIDField := field == "_id" || (strings.HasSuffix(fieldLower, "id") && len(fieldLower) > 2)
		normalized[field] = h.normalizeFilterValue(value, isIDField)
	}
	return normalized
}

// normalizeFilterValue chuyển đổi giá trị trong filter, hỗ trợ nested structures
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilterValue(value interface{}, isIDField bool) interface{} {
	if value == nil {
		return value
	}

	if strValue, ok := value.(string); ok && isIDField {
		if primitive.IsValidObjectID(strValue) {
			if objID, err := primitive.ObjectIDFromHex(strValue); err == nil {
				return objID
			}
		}
		return strValue
	}

	if arrValue, ok := value.([]interface{}); ok {
		normalizedArr := make([]interface{}, len(arrValue))
		for i, item := range arrValue {
			normalizedArr[i] = h.normalizeFilterValue(item, isIDField)
		}
		return normalizedArr
	}

	// Map cho các operator như $in, $nin, $eq — xử lý đệ quy
	if mapValue, ok := value.(map[string]interface{}); ok {
		normalizedMap := make(map[string]interface{}, len(mapValue))
		for key, val := range mapValue {
			normalizedMap[key] = h.normalizeFilterValue(val, isIDField)
		}
		return normalizedMap
	}

	return value
}

// validateFilter kiểm tra tính hợp lệ của filter
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	if len(filter) > h.filterOptions.MaxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter vượt quá số lượng trường cho phép (tối đa %d)", h.filterOptions.MaxFields),
			common.StatusBadRequest,
			nil,
		)
	}

	for field, value := range filter {
		if utility.SliceContains(h.filterOptions.DeniedFields, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Trường '%s' không được phép sử dụng trong filter", field),
				common.StatusBadRequest,
				nil,
			)
		}

		if mapValue, ok := value.(map[string]interface{}); ok {
			for op := range mapValue {
				if strings.HasPrefix(op, "$") && !utility.SliceContains(h.filterOptions.AllowedOperators, op) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("Toán tử '%s' không được phép. Các toán tử được phép: %v", op, h.filterOptions.AllowedOperators),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}
	return nil
}

// ProcessMongoOptions xử lý options từ query string (?options={...})
// và chuyển đổi sang MongoDB options. Hỗ trợ: projection, sort, limit, skip.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessMongoOptions(c fiber.Ctx, isFindOne bool) (interface{}, error) {
	var rawOptions map[string]interface{}

	optionsStr := c.Query("options", "{}")
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options không đúng định dạng JSON. Chi tiết lỗi: %v", err),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateMongoOptions(rawOptions); err != nil {
		return nil, err
	}

	parseSort := func(sortMap map[string]interface{}) bson.D {
		sortBson := bson.D{}
		for field, value := range sortMap {
			sortValue := 0
			if v, ok := value.(float64); ok {
				sortValue = int(v)
			}
			if sortValue != 1 && sortValue != -1 {
				continue
			}
			sortBson = append(sortBson, bson.E{Key: field, Value: sortValue})
		}
		return sortBson
	}

	if isFindOne {
		opts := mongoopts.FindOne()
		if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
			opts.SetProjection(projection)
		}
		if sort, ok := rawOptions["sort"].(map[string]interface{}); ok {
			opts.SetSort(parseSort(sort))
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if sort, ok := rawOptions["sort"].(map[string]interface{}); ok {
		opts.SetSort(parseSort(sort))
	}
	if limit, ok := rawOptions["limit"].(float64); ok {
		opts.SetLimit(int64(limit))
	}
	if skip, ok := rawOptions["skip"].(float64); ok {
		opts.SetSkip(int64(skip))
	}
	return opts, nil
}

// validateMongoOptions kiểm tra tính hợp lệ của các options
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateMongoOptions(options map[string]interface{}) error {
	allowedOptions := map[string]bool{"projection": true, "sort": true, "limit": true, "skip": true}
	for key := range options {
		if !allowedOptions[key] {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Option '%s' không được hỗ trợ. Các options được phép: projection, sort, limit, skip", key),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	for _, optName := range []string{"projection", "sort"} {
		if m, ok := options[optName].(map[string]interface{}); ok {
			for field := range m {
				if utility.SliceContains(h.filterOptions.DeniedFields, field) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("Trường '%s' không được phép sử dụng trong %s", field, optName),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	if limit, ok := options["limit"].(float64); ok && (limit <= 0 || limit > 1000) {
		return common.NewError(common.ErrCodeValidationFormat, "Giá trị limit phải trong khoảng 1..1000", common.StatusBadRequest, nil)
	}
	if skip, ok := options["skip"].(float64); ok && skip < 0 {
		return common.NewError(common.ErrCodeValidationFormat, "Giá trị skip không được âm", common.StatusBadRequest, nil)
	}
	return nil
}

// ParsePagination parse thông tin phân trang từ query (page, limit)
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePagination(c fiber.Ctx) (int64, int64) {
	page := utility.P2Int64(c.Query("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit := utility.P2Int64(c.Query("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

// GetIDFromContext lấy ID từ URI params của request
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetIDFromContext(c fiber.Ctx) string {
	return c.Params("id")
}

// ====================================
// DTO → MODEL TRANSFORM
// ====================================

// TransformCreateInputToModel transform CreateInput (DTO) sang Model (T).
// Copy các field cùng tên; field string trong DTO ứng với field ObjectID
// trong Model được convert tự động (string hex → primitive.ObjectID).
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformCreateInputToModel(input *CreateInput) (*T, error) {
	model := new(T)
	if err := transformToModel(input, model); err != nil {
		return nil, err
	}
	return model, nil
}

// TransformUpdateInputToModel transform UpdateInput (DTO) sang Model (T)
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformUpdateInputToModel(input *UpdateInput) (*T, error) {
	model := new(T)
	if err := transformToModel(input, model); err != nil {
		return nil, err
	}
	return model, nil
}

var objectIDType = reflect.TypeOf(primitive.ObjectID{})

// transformToModel copy field cùng tên từ DTO sang model bằng reflection
func transformToModel(input interface{}, model interface{}) error {
	inputVal := reflect.ValueOf(input)
	if inputVal.Kind() == reflect.Ptr {
		inputVal = inputVal.Elem()
	}
	if inputVal.Kind() != reflect.Struct {
		return fmt.Errorf("input phải là struct hoặc pointer đến struct")
	}

	modelVal := reflect.ValueOf(model)
	if modelVal.Kind() == reflect.Ptr {
		modelVal = modelVal.Elem()
	}
	if modelVal.Kind() != reflect.Struct {
		return fmt.Errorf("model phải là struct hoặc pointer đến struct")
	}

	inputType := inputVal.Type()
	for i := 0; i < inputVal.NumField(); i++ {
		inputField := inputVal.Field(i)
		fieldName := inputType.Field(i).Name
		if !inputField.CanInterface() {
			continue
		}

		modelField := modelVal.FieldByName(fieldName)
		if !modelField.IsValid() || !modelField.CanSet() {
			continue
		}

		if converted, ok, err := convertIDValue(inputField, modelField.Type()); err != nil {
			return fmt.Errorf("field '%s': %w", fieldName, err)
		} else if ok {
			modelField.Set(converted)
			continue
		}

		if inputField.Type().AssignableTo(modelField.Type()) {
			modelField.Set(inputField)
		} else if inputField.Type().ConvertibleTo(modelField.Type()) {
			modelField.Set(inputField.Convert(modelField.Type()))
		}
		// Không tương thích → bỏ qua, service validate sau
	}
	return nil
}

// convertIDValue convert string hex sang ObjectID khi model field là ObjectID.
// Hỗ trợ cả *ObjectID và []ObjectID. Trả về ok=false nếu không phải trường hợp convert ID.
func convertIDValue(inputField reflect.Value, targetType reflect.Type) (reflect.Value, bool, error) {
	switch {
	case inputField.Kind() == reflect.String && targetType == objectIDType:
		s := inputField.String()
		if s == "" {
			return reflect.ValueOf(primitive.NilObjectID), true, nil
		}
		id, err := utility.String2ObjectID(s)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(id), true, nil

	case inputField.Kind() == reflect.String && targetType.Kind() == reflect.Ptr && targetType.Elem() == objectIDType:
		s := inputField.String()
		if s == "" {
			return reflect.Zero(targetType), true, nil
		}
		id, err := utility.String2ObjectID(s)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(&id), true, nil

	case inputField.Kind() == reflect.Slice && inputField.Type().Elem().Kind() == reflect.String &&
		targetType.Kind() == reflect.Slice && targetType.Elem() == objectIDType:
		ids := make([]primitive.ObjectID, 0, inputField.Len())
		for i := 0; i < inputField.Len(); i++ {
			id, err := utility.String2ObjectID(inputField.Index(i).String())
			if err != nil {
				return reflect.Value{}, false, err
			}
			ids = append(ids, id)
		}
		return reflect.ValueOf(ids), true, nil
	}
	return reflect.Value{}, false, nil
}
