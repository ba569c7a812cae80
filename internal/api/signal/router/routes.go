// Package router đăng ký các route của domain signal.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"meta_response/internal/api/middleware"
	apirouter "meta_response/internal/api/router"
	signalhdl "meta_response/internal/api/signal/handler"
	signalsvc "meta_response/internal/api/signal/service"
)

// Register trả về hàm đăng ký route signal; ingest service được wire lúc init
// (cần case binder từ domain incident).
func Register(ingestService *signalsvc.IngestService) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		signalHandler, err := signalhdl.NewSignalHandler()
		if err != nil {
			return fmt.Errorf("failed to create signal handler: %w", err)
		}
		entityTypeHandler, err := signalhdl.NewEntityTypeHandler()
		if err != nil {
			return fmt.Errorf("failed to create entity type handler: %w", err)
		}
		entityHandler, err := signalhdl.NewEntityHandler()
		if err != nil {
			return fmt.Errorf("failed to create entity handler: %w", err)
		}
		filterHandler, err := signalhdl.NewSignalFilterHandler()
		if err != nil {
			return fmt.Errorf("failed to create signal filter handler: %w", err)
		}
		instanceHandler, err := signalhdl.NewSignalInstanceHandler()
		if err != nil {
			return fmt.Errorf("failed to create signal instance handler: %w", err)
		}
		ingestHandler, err := signalhdl.NewIngestHandler(ingestService)
		if err != nil {
			return fmt.Errorf("failed to create ingest handler: %w", err)
		}

		// Catalogue CRUD (auth người dùng + project context)
		r.RegisterCRUDRoutes(v1, "/signal", signalHandler, apirouter.ReadWriteConfig)
		r.RegisterCRUDRoutes(v1, "/entity-type", entityTypeHandler, apirouter.ReadWriteConfig)
		r.RegisterCRUDRoutes(v1, "/entity", entityHandler, apirouter.ReadOnlyConfig)
		r.RegisterCRUDRoutes(v1, "/signal-instance", instanceHandler, apirouter.ReadOnlyConfig)

		// Filter: create/update qua handler riêng (validate expression), còn lại CRUD chuẩn
		userChain := []fiber.Handler{middleware.AuthMiddleware(), middleware.ProjectContextMiddleware()}
		apirouter.RegisterRouteWithMiddleware(v1, "/signal-filter", "POST", "/create", userChain, filterHandler.HandleCreate)
		apirouter.RegisterRouteWithMiddleware(v1, "/signal-filter", "PUT", "/:id/update", userChain, filterHandler.HandleUpdate)
		filterConfig := apirouter.ReadOnlyConfig
		filterConfig.DelById = true
		r.RegisterCRUDRoutes(v1, "/signal-filter", filterHandler, filterConfig)

		// Cổng ingest: xác thực bằng access token, project suy ra từ token.
		// Prefix riêng để middleware token không dính vào các route catalogue.
		ingestChain := []fiber.Handler{middleware.IngestTokenMiddleware()}
		apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "POST", "/signal", ingestChain, ingestHandler.HandleIngest)
		return nil
	}
}
