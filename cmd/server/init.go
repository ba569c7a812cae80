package main

import (
	"context"

	"meta_response/config"
	authmodels "meta_response/internal/api/auth/models"
	costmodels "meta_response/internal/api/cost/models"
	incidentmodels "meta_response/internal/api/incident/models"
	pluginmodels "meta_response/internal/api/plugin/models"
	signalmodels "meta_response/internal/api/signal/models"
	"meta_response/internal/database"
	"meta_response/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// InitGlobal khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.InitColNames()
	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection theo tag trên model
	ctx := context.TODO()
	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	names := global.MongoDB_ColNames

	indexModels := []struct {
		collection string
		model      interface{}
	}{
		{names.Users, authmodels.User{}},
		{names.Organizations, authmodels.Organization{}},
		{names.Projects, authmodels.Project{}},
		{names.AccessTokens, authmodels.AccessToken{}},

		{names.PluginInstances, pluginmodels.PluginInstance{}},

		{names.Signals, signalmodels.Signal{}},
		{names.EntityTypes, signalmodels.EntityType{}},
		{names.Entities, signalmodels.Entity{}},
		{names.SignalFilters, signalmodels.SignalFilter{}},
		{names.SignalInstances, signalmodels.SignalInstance{}},
		{names.SignalDedupeKeys, signalmodels.SignalDedupeKey{}},

		{names.CaseTypes, incidentmodels.CaseType{}},
		{names.CasePriorities, incidentmodels.CasePriority{}},
		{names.CaseSeverities, incidentmodels.CaseSeverity{}},
		{names.IncidentTypes, incidentmodels.IncidentType{}},
		{names.IncidentPriorities, incidentmodels.IncidentPriority{}},
		{names.IncidentSeverities, incidentmodels.IncidentSeverity{}},
		{names.Cases, incidentmodels.Case{}},
		{names.Incidents, incidentmodels.Incident{}},
		{names.Participants, incidentmodels.Participant{}},
		{names.IncidentRoles, incidentmodels.IncidentRole{}},
		{names.Tags, incidentmodels.Tag{}},
		{names.Events, incidentmodels.Event{}},
		{names.IncidentFeedbacks, incidentmodels.IncidentFeedback{}},
		{names.FeedbackReminders, incidentmodels.FeedbackReminder{}},

		{names.PluginEvents, costmodels.PluginEvent{}},
		{names.CostModels, costmodels.CostModel{}},
		{names.ParticipantActivities, costmodels.ParticipantActivity{}},
		{names.ResponseCosts, costmodels.ResponseCost{}},
	}

	for _, item := range indexModels {
		createIndexesFor(ctx, db, item.collection, item.model)
	}
}

func createIndexesFor(ctx context.Context, db *mongo.Database, name string, model interface{}) {
	if err := database.CreateIndexes(ctx, db.Collection(name), model); err != nil {
		logrus.Errorf("Failed to create indexes for %s: %v", name, err)
	}
}
