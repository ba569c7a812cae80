package global

import (
	"meta_response/config"
	"meta_response/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	// Tenancy & Auth
	Users         string // Tên collection cho người dùng
	Organizations string // Tên collection cho tổ chức
	Projects      string // Tên collection cho dự án
	AccessTokens  string // Tên collection cho token đăng nhập

	// Plugin System
	PluginInstances string // Tên collection cho plugin instances (config mã hóa)

	// Signal Catalogue & Ingestion
	Signals          string // Tên collection cho định nghĩa signal
	EntityTypes      string // Tên collection cho entity types (JSON-path + regex)
	Entities         string // Tên collection cho entities đã extract
	SignalFilters    string // Tên collection cho filter (snooze/deduplicate)
	SignalInstances  string // Tên collection cho signal instances
	SignalDedupeKeys string // Tên collection cho khóa dedupe theo (signal, fingerprint)

	// Case / Incident
	CaseTypes          string // Tên collection cho loại case
	CasePriorities     string // Tên collection cho độ ưu tiên case
	CaseSeverities     string // Tên collection cho mức độ nghiêm trọng case
	IncidentTypes      string // Tên collection cho loại incident
	IncidentPriorities string // Tên collection cho độ ưu tiên incident
	IncidentSeverities string // Tên collection cho mức độ nghiêm trọng incident
	Cases              string // Tên collection cho case
	Incidents          string // Tên collection cho incident
	Participants       string // Tên collection cho participant (role spans)
	IncidentRoles      string // Tên collection cho policy phân giải role
	Tags               string // Tên collection cho tags
	Events             string // Tên collection cho timeline events
	IncidentFeedbacks  string // Tên collection cho feedback sau incident
	FeedbackReminders  string // Tên collection cho reminder feedback oncall

	// Cost Accounting
	PluginEvents          string // Tên collection cho plugin events (nguồn activity)
	CostModels            string // Tên collection cho cost model (danh sách activity có trọng số)
	ParticipantActivities string // Tên collection cho activity spans
	ResponseCosts         string // Tên collection cho kết quả tính chi phí (2 model)
}

// Các biến toàn cục
var Validate *validator.Validate                                       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration                                 // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = MongoDB_CollectionName{} // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases

// InitColNames gán tên cho tất cả collection. Gọi một lần khi khởi động server.
func InitColNames() {
	MongoDB_ColNames.Users = "users"
	MongoDB_ColNames.Organizations = "organizations"
	MongoDB_ColNames.Projects = "projects"
	MongoDB_ColNames.AccessTokens = "access_tokens"

	MongoDB_ColNames.PluginInstances = "plugin_instances"

	MongoDB_ColNames.Signals = "signals"
	MongoDB_ColNames.EntityTypes = "entity_types"
	MongoDB_ColNames.Entities = "entities"
	MongoDB_ColNames.SignalFilters = "signal_filters"
	MongoDB_ColNames.SignalInstances = "signal_instances"
	MongoDB_ColNames.SignalDedupeKeys = "signal_dedupe_keys"

	MongoDB_ColNames.CaseTypes = "case_types"
	MongoDB_ColNames.CasePriorities = "case_priorities"
	MongoDB_ColNames.CaseSeverities = "case_severities"
	MongoDB_ColNames.IncidentTypes = "incident_types"
	MongoDB_ColNames.IncidentPriorities = "incident_priorities"
	MongoDB_ColNames.IncidentSeverities = "incident_severities"
	MongoDB_ColNames.Cases = "cases"
	MongoDB_ColNames.Incidents = "incidents"
	MongoDB_ColNames.Participants = "participants"
	MongoDB_ColNames.IncidentRoles = "incident_roles"
	MongoDB_ColNames.Tags = "tags"
	MongoDB_ColNames.Events = "events"
	MongoDB_ColNames.IncidentFeedbacks = "incident_feedbacks"
	MongoDB_ColNames.FeedbackReminders = "feedback_reminders"

	MongoDB_ColNames.PluginEvents = "plugin_events"
	MongoDB_ColNames.CostModels = "cost_models"
	MongoDB_ColNames.ParticipantActivities = "participant_activities"
	MongoDB_ColNames.ResponseCosts = "response_costs"
}

// ColNamesList trả về danh sách tên tất cả collection (dùng khi ensure collections + indexes).
func ColNamesList() []string {
	return []string{
		MongoDB_ColNames.Users,
		MongoDB_ColNames.Organizations,
		MongoDB_ColNames.Projects,
		MongoDB_ColNames.AccessTokens,
		MongoDB_ColNames.PluginInstances,
		MongoDB_ColNames.Signals,
		MongoDB_ColNames.EntityTypes,
		MongoDB_ColNames.Entities,
		MongoDB_ColNames.SignalFilters,
		MongoDB_ColNames.SignalInstances,
		MongoDB_ColNames.SignalDedupeKeys,
		MongoDB_ColNames.CaseTypes,
		MongoDB_ColNames.CasePriorities,
		MongoDB_ColNames.CaseSeverities,
		MongoDB_ColNames.IncidentTypes,
		MongoDB_ColNames.IncidentPriorities,
		MongoDB_ColNames.IncidentSeverities,
		MongoDB_ColNames.Cases,
		MongoDB_ColNames.Incidents,
		MongoDB_ColNames.Participants,
		MongoDB_ColNames.IncidentRoles,
		MongoDB_ColNames.Tags,
		MongoDB_ColNames.Events,
		MongoDB_ColNames.IncidentFeedbacks,
		MongoDB_ColNames.FeedbackReminders,
		MongoDB_ColNames.PluginEvents,
		MongoDB_ColNames.CostModels,
		MongoDB_ColNames.ParticipantActivities,
		MongoDB_ColNames.ResponseCosts,
	}
}
