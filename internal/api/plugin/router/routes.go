// Package router đăng ký các route của domain plugin.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"meta_response/internal/api/middleware"
	pluginhdl "meta_response/internal/api/plugin/handler"
	apirouter "meta_response/internal/api/router"
)

// Register đăng ký route quản lý plugin instance lên v1
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := pluginhdl.NewPluginInstanceHandler()
	if err != nil {
		return fmt.Errorf("failed to create plugin instance handler: %w", err)
	}

	chain := []fiber.Handler{middleware.AuthMiddleware(), middleware.ProjectContextMiddleware()}
	apirouter.RegisterRouteWithMiddleware(v1, "/plugin-instance", "POST", "/create", chain, handler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/plugin-instance", "PUT", "/:id/config", chain, handler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/plugin-instance", "POST", "/:id/enable", chain, handler.HandleEnable)
	apirouter.RegisterRouteWithMiddleware(v1, "/plugin-instance", "POST", "/:id/disable", chain, handler.HandleDisable)

	// Các route đọc và xóa dùng CRUD chuẩn; config không xuất hiện trong output
	config := apirouter.ReadOnlyConfig
	config.DelById = true
	r.RegisterCRUDRoutes(v1, "/plugin-instance", handler, config)
	return nil
}
