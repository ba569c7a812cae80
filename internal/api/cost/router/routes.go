// Package router đăng ký các route của domain cost.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	costhdl "meta_response/internal/api/cost/handler"
	"meta_response/internal/api/middleware"
	apirouter "meta_response/internal/api/router"
)

// Register đăng ký route plugin event, cost model, activity và response cost
func Register(v1 fiber.Router, r *apirouter.Router) error {
	pluginEventHandler, err := costhdl.NewPluginEventHandler()
	if err != nil {
		return fmt.Errorf("failed to create plugin event handler: %w", err)
	}
	costModelHandler, err := costhdl.NewCostModelHandler()
	if err != nil {
		return fmt.Errorf("failed to create cost model handler: %w", err)
	}
	activityHandler, err := costhdl.NewActivityHandler()
	if err != nil {
		return fmt.Errorf("failed to create activity handler: %w", err)
	}
	responseCostHandler, err := costhdl.NewResponseCostHandler()
	if err != nil {
		return fmt.Errorf("failed to create response cost handler: %w", err)
	}

	r.RegisterCRUDRoutes(v1, "/plugin-event", pluginEventHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/cost-model", costModelHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/participant-activity", activityHandler, apirouter.ReadOnlyConfig)
	r.RegisterCRUDRoutes(v1, "/response-cost", responseCostHandler, apirouter.ReadOnlyConfig)

	userChain := []fiber.Handler{middleware.AuthMiddleware(), middleware.ProjectContextMiddleware()}
	apirouter.RegisterRouteWithMiddleware(v1, "/participant-activity", "POST", "/record", userChain, activityHandler.HandleRecord)
	apirouter.RegisterRouteWithMiddleware(v1, "/response-cost", "GET", "/case/:id", userChain, responseCostHandler.HandleCaseCost)
	apirouter.RegisterRouteWithMiddleware(v1, "/response-cost", "GET", "/incident/:id", userChain, responseCostHandler.HandleIncidentCost)
	return nil
}
