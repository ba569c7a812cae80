package basehdl

import (
	"fmt"

	"meta_response/internal/common"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// InsertOne thêm mới một document vào database.
// Dữ liệu được parse từ request body (DTO CreateInput), validate và transform
// sang Model trước khi thêm vào DB. projectId được gán tự động từ context
// nếu model có field ProjectID và request không chỉ định.
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input CreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if projID := h.GetActiveProjectID(c); projID != nil {
			h.SetProjectID(model, *projID)
		}

		data, err := h.BaseService.InsertOne(c.Context(), *model)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// InsertMany thêm nhiều document vào database.
// Body là một mảng JSON các model.
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertMany(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var inputs []T
		if err := h.ParseRequestBody(c, &inputs); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if projID := h.GetActiveProjectID(c); projID != nil {
			for i := range inputs {
				h.SetProjectID(&inputs[i], *projID)
			}
		}

		data, err := h.BaseService.InsertMany(c.Context(), inputs)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOne tìm một document theo điều kiện filter.
// Filter và options được truyền qua query string dưới dạng JSON.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		opts, err := h.ProcessMongoOptions(c, true)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		scopedFilter := h.ApplyProjectFilter(c, bson.M(filter))
		data, err := h.BaseService.FindOne(c.Context(), scopedFilter, opts.(*mongoopts.FindOneOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOneById tìm một document theo ID từ URI params
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		idStr := h.GetIDFromContext(c)
		id, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		if err := h.ValidateProjectAccess(c, idStr); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.FindOneById(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindManyByIds tìm nhiều document theo danh sách ID (?ids=["...", "..."])
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindManyByIds(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var idStrs []string
		idsStr := c.Query("ids", "[]")
		if err := utility.JSONToStrings(idsStr, &idStrs); err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Danh sách ids không đúng định dạng JSON", common.StatusBadRequest, err))
			return nil
		}

		ids, err := utility.Strings2ObjectIDs(idStrs)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, err))
			return nil
		}

		data, err := h.BaseService.FindManyByIds(c.Context(), ids)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// Find tìm nhiều document theo điều kiện filter
func (h *BaseHandler[T, CreateInput, UpdateInput]) Find(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		opts, err := h.ProcessMongoOptions(c, false)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		scopedFilter := h.ApplyProjectFilter(c, bson.M(filter))
		data, err := h.BaseService.Find(c.Context(), scopedFilter, opts.(*mongoopts.FindOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindWithPagination tìm nhiều document với phân trang (?page=1&limit=10)
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindWithPagination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, limit := h.ParsePagination(c)
		scopedFilter := h.ApplyProjectFilter(c, bson.M(filter))
		data, err := h.BaseService.FindWithPagination(c.Context(), scopedFilter, page, limit, nil)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// UpdateById cập nhật một document theo ID.
// Body là DTO UpdateInput; chỉ các field khác zero được đưa vào $set.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		idStr := h.GetIDFromContext(c)
		id, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		var input UpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.TransformUpdateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateProjectAccess(c, idStr); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Chỉ $set các field khác zero để không ghi đè field không gửi lên
		setFields, err := utility.NonZeroFields(model)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, err.Error(), common.StatusBadRequest, err))
			return nil
		}
		if len(setFields) == 0 {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Không có dữ liệu để cập nhật", common.StatusBadRequest, nil))
			return nil
		}

		data, err := h.BaseService.UpdateById(c.Context(), id, setFields)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// DeleteById xóa một document theo ID.
// Quan hệ tham chiếu (struct tag relationship) được kiểm tra ở service layer.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		idStr := h.GetIDFromContext(c)
		id, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		if err := h.ValidateProjectAccess(c, idStr); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.BaseService.DeleteById(c.Context(), id)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// CountDocuments đếm số document theo điều kiện filter
func (h *BaseHandler[T, CreateInput, UpdateInput]) CountDocuments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		scopedFilter := h.ApplyProjectFilter(c, bson.M(filter))
		count, err := h.BaseService.CountDocuments(c.Context(), scopedFilter)
		h.HandleResponse(c, fiber.Map{"count": count}, err)
		return nil
	})
}

// Distinct lấy danh sách giá trị duy nhất của một field (?field=name)
func (h *BaseHandler[T, CreateInput, UpdateInput]) Distinct(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		field := c.Query("field", "")
		if field == "" {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu tham số field", common.StatusBadRequest, nil))
			return nil
		}
		if utility.SliceContains(h.filterOptions.DeniedFields, field) {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("Trường '%s' không được phép", field), common.StatusBadRequest, nil))
			return nil
		}

		filter, err := h.ProcessFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		scopedFilter := h.ApplyProjectFilter(c, bson.M(filter))
		values, err := h.BaseService.Distinct(c.Context(), field, scopedFilter)
		h.HandleResponse(c, values, err)
		return nil
	})
}
