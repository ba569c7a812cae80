// Package router đăng ký các route thuộc domain auth: system, auth, tenancy, token.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "meta_response/internal/api/auth/handler"
	basehdl "meta_response/internal/api/base/handler"
	"meta_response/internal/api/middleware"
	apirouter "meta_response/internal/api/router"
)

// Register đăng ký tất cả route auth (system, auth, tenancy, access token) lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerAuthRoutes(v1); err != nil {
		return err
	}
	if err := registerTenancyRoutes(v1, r); err != nil {
		return err
	}
	if err := registerAccessTokenRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	router.Post("/auth/register", userHandler.HandleRegister)
	router.Post("/auth/login", userHandler.HandleLogin)

	authOnlyMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "POST", "/logout", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleLogout)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "GET", "/profile", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleGetProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "PUT", "/profile", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleUpdateProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "POST", "/change-password", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleChangePassword)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/block", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleBlockUser)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/unblock", []fiber.Handler{authOnlyMiddleware}, userHandler.HandleUnBlockUser)
	return nil
}

func registerTenancyRoutes(router fiber.Router, r *apirouter.Router) error {
	organizationHandler, err := authhdl.NewOrganizationHandler()
	if err != nil {
		return fmt.Errorf("failed to create organization handler: %w", err)
	}
	projectHandler, err := authhdl.NewProjectHandler()
	if err != nil {
		return fmt.Errorf("failed to create project handler: %w", err)
	}

	r.RegisterCRUDRoutes(router, "/organization", organizationHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(router, "/project", projectHandler, apirouter.ReadWriteConfig)
	return nil
}

func registerAccessTokenRoutes(router fiber.Router, r *apirouter.Router) error {
	accessTokenHandler, err := authhdl.NewAccessTokenHandler()
	if err != nil {
		return fmt.Errorf("failed to create access token handler: %w", err)
	}

	authOnlyMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(router, "/access-token", "POST", "/create", []fiber.Handler{authOnlyMiddleware}, accessTokenHandler.HandleCreate)
	r.RegisterCRUDRoutes(router, "/access-token", accessTokenHandler, apirouter.ReadOnlyConfig)
	return nil
}
