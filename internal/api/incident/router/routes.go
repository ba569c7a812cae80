// Package router đăng ký các route của domain case/incident.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	incidenthdl "meta_response/internal/api/incident/handler"
	"meta_response/internal/api/middleware"
	apirouter "meta_response/internal/api/router"
)

// Register đăng ký route catalogue, case, incident, policy role và timeline
func Register(v1 fiber.Router, r *apirouter.Router) error {
	caseTypeHandler, err := incidenthdl.NewCaseTypeHandler()
	if err != nil {
		return fmt.Errorf("failed to create case type handler: %w", err)
	}
	casePriorityHandler, err := incidenthdl.NewCasePriorityHandler()
	if err != nil {
		return fmt.Errorf("failed to create case priority handler: %w", err)
	}
	caseSeverityHandler, err := incidenthdl.NewCaseSeverityHandler()
	if err != nil {
		return fmt.Errorf("failed to create case severity handler: %w", err)
	}
	incidentTypeHandler, err := incidenthdl.NewIncidentTypeHandler()
	if err != nil {
		return fmt.Errorf("failed to create incident type handler: %w", err)
	}
	incidentPriorityHandler, err := incidenthdl.NewIncidentPriorityHandler()
	if err != nil {
		return fmt.Errorf("failed to create incident priority handler: %w", err)
	}
	incidentSeverityHandler, err := incidenthdl.NewIncidentSeverityHandler()
	if err != nil {
		return fmt.Errorf("failed to create incident severity handler: %w", err)
	}
	tagHandler, err := incidenthdl.NewTagHandler()
	if err != nil {
		return fmt.Errorf("failed to create tag handler: %w", err)
	}
	eventHandler, err := incidenthdl.NewEventHandler()
	if err != nil {
		return fmt.Errorf("failed to create event handler: %w", err)
	}
	participantHandler, err := incidenthdl.NewParticipantHandler()
	if err != nil {
		return fmt.Errorf("failed to create participant handler: %w", err)
	}
	caseHandler, err := incidenthdl.NewCaseHandler()
	if err != nil {
		return fmt.Errorf("failed to create case handler: %w", err)
	}
	incidentHandler, err := incidenthdl.NewIncidentHandler()
	if err != nil {
		return fmt.Errorf("failed to create incident handler: %w", err)
	}
	incidentRoleHandler, err := incidenthdl.NewIncidentRoleHandler()
	if err != nil {
		return fmt.Errorf("failed to create incident role handler: %w", err)
	}

	// Catalogue CRUD
	r.RegisterCRUDRoutes(v1, "/case-type", caseTypeHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/case-priority", casePriorityHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/case-severity", caseSeverityHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/incident-type", incidentTypeHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/incident-priority", incidentPriorityHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/incident-severity", incidentSeverityHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/tag", tagHandler, apirouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/event", eventHandler, apirouter.ReadOnlyConfig)
	r.RegisterCRUDRoutes(v1, "/participant", participantHandler, apirouter.ReadOnlyConfig)

	userChain := []fiber.Handler{middleware.AuthMiddleware(), middleware.ProjectContextMiddleware()}

	// Case: tạo thủ công, chuyển trạng thái, gán role, timeline; còn lại CRUD đọc
	apirouter.RegisterRouteWithMiddleware(v1, "/case", "POST", "/create", userChain, caseHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/case", "POST", "/:id/transition", userChain, caseHandler.HandleTransition)
	apirouter.RegisterRouteWithMiddleware(v1, "/case", "POST", "/:id/roles/assign", userChain, caseHandler.HandleAssignRole)
	apirouter.RegisterRouteWithMiddleware(v1, "/case", "GET", "/:id/timeline", userChain, caseHandler.HandleTimeline)
	caseConfig := apirouter.ReadOnlyConfig
	caseConfig.UpdById = true
	r.RegisterCRUDRoutes(v1, "/case", caseHandler, caseConfig)

	// Incident: khai báo, escalate từ case, chuyển trạng thái, role, feedback
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "POST", "/declare", userChain, incidentHandler.HandleDeclare)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "POST", "/escalate/:id", userChain, incidentHandler.HandleEscalate)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "POST", "/:id/transition", userChain, incidentHandler.HandleTransition)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "POST", "/:id/roles/assign", userChain, incidentHandler.HandleAssignRole)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "GET", "/:id/timeline", userChain, incidentHandler.HandleTimeline)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "POST", "/:id/feedback", userChain, incidentHandler.HandleSubmitFeedback)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident", "GET", "/:id/feedback", userChain, incidentHandler.HandleListFeedback)
	incidentConfig := apirouter.ReadOnlyConfig
	incidentConfig.UpdById = true
	r.RegisterCRUDRoutes(v1, "/incident", incidentHandler, incidentConfig)

	// Policy phân giải role: create/update qua handler riêng (chuyển đổi ObjectID)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident-role", "POST", "/create", userChain, incidentRoleHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/incident-role", "PUT", "/:id/update", userChain, incidentRoleHandler.HandleUpdate)
	roleConfig := apirouter.ReadOnlyConfig
	roleConfig.DelById = true
	r.RegisterCRUDRoutes(v1, "/incident-role", incidentRoleHandler, roleConfig)

	return nil
}
