package signalhdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	signaldto "meta_response/internal/api/signal/dto"
	models "meta_response/internal/api/signal/models"
	signalsvc "meta_response/internal/api/signal/service"
	"meta_response/internal/common"
	"meta_response/internal/logger"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// IngestHandler là cổng nhận signal instance từ producer bên ngoài.
// Xác thực bằng access token (IngestTokenMiddleware), project lấy từ token.
type IngestHandler struct {
	*basehdl.BaseHandler[models.SignalInstance, signaldto.IngestInput, signaldto.IngestInput]
	ingestService *signalsvc.IngestService
}

// NewIngestHandler tạo instance mới của IngestHandler
func NewIngestHandler(ingestService *signalsvc.IngestService) (*IngestHandler, error) {
	instanceService, err := signalsvc.NewSignalInstanceService()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal instance service: %v", err)
	}
	return &IngestHandler{
		BaseHandler:   basehdl.NewBaseHandler[models.SignalInstance, signaldto.IngestInput, signaldto.IngestInput](instanceService),
		ingestService: ingestService,
	}, nil
}

// HandleIngest xử lý một lần ingest
func (h *IngestHandler) HandleIngest(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectIDStr, ok := c.Locals("project_id").(string)
		if !ok || projectIDStr == "" {
			h.HandleResponse(c, nil, common.ErrTokenMissing)
			return nil
		}
		projectID, err := utility.String2ObjectID(projectIDStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Project ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		var input signaldto.IngestInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		instance, err := h.ingestService.Ingest(c.Context(), projectID, &input)
		if err == nil {
			logger.LogAction("signal_ingest", c, map[string]interface{}{
				"instance": instance.UID,
				"signal":   input.SignalRef,
				"action":   instance.FilterActionTaken,
			})
		}
		h.HandleResponse(c, instance, err)
		return nil
	})
}
