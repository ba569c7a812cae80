package authhdl

import (
	"fmt"

	authdto "meta_response/internal/api/auth/dto"
	models "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	basehdl "meta_response/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// AccessTokenHandler xử lý cấp và quản lý access token cho hệ thống nguồn
type AccessTokenHandler struct {
	*basehdl.BaseHandler[models.AccessToken, authdto.AccessTokenCreateInput, authdto.AccessTokenCreateInput]
	accessTokenService *authsvc.AccessTokenService
}

// NewAccessTokenHandler tạo instance mới của AccessTokenHandler
func NewAccessTokenHandler() (*AccessTokenHandler, error) {
	service, err := authsvc.NewAccessTokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to create access token service: %v", err)
	}
	return &AccessTokenHandler{
		BaseHandler:        basehdl.NewBaseHandler[models.AccessToken, authdto.AccessTokenCreateInput, authdto.AccessTokenCreateInput](service),
		accessTokenService: service,
	}, nil
}

// HandleCreate cấp token mới. Token plaintext chỉ trả về một lần tại response này.
func (h *AccessTokenHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.AccessTokenCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		record, plaintext, err := h.accessTokenService.Create(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{
			"accessToken": record,
			"token":       plaintext,
		}, nil)
		return nil
	})
}
