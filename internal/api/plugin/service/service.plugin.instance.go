// Package pluginsvc - service quản lý plugin instance và registry resolve capability.
package pluginsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	basesvc "meta_response/internal/api/base/service"
	"meta_response/internal/api/plugin/capability"
	plugindto "meta_response/internal/api/plugin/dto"
	models "meta_response/internal/api/plugin/models"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PluginInstanceService quản lý CRUD plugin instance, mã hóa config at rest
type PluginInstanceService struct {
	*basesvc.BaseServiceMongoImpl[models.PluginInstance]
}

// NewPluginInstanceService tạo mới PluginInstanceService
func NewPluginInstanceService() (*PluginInstanceService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PluginInstances)
	if !exist {
		return nil, fmt.Errorf("failed to get plugin_instances collection: %v", common.ErrNotFound)
	}
	return &PluginInstanceService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.PluginInstance](col),
	}, nil
}

// validateConfig kiểm tra config lúc lưu: adapter webhook yêu cầu endpoint là URL hợp lệ.
func validateConfig(cfg map[string]interface{}) error {
	endpoint, _ := cfg["endpoint"].(string)
	if endpoint == "" {
		return common.NewError(common.ErrCodeValidationInput, "Config plugin thiếu endpoint", common.StatusBadRequest, nil)
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return common.NewError(common.ErrCodeValidationFormat, "Endpoint plugin không phải URL hợp lệ", common.StatusBadRequest, nil)
	}
	return nil
}

// encryptConfig serialize rồi mã hóa config bằng khóa process-wide
func encryptConfig(cfg map[string]interface{}) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", common.NewError(common.ErrCodeValidationFormat, "Config plugin không serialize được", common.StatusBadRequest, err)
	}
	encrypted, err := utility.EncryptAESGCM(global.ServerConfig.PluginConfigKey, raw)
	if err != nil {
		return "", common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa config plugin", common.StatusInternalServerError, err)
	}
	return encrypted, nil
}

// DecryptConfig giải mã config của một instance. Giá trị giải mã không được log.
func (s *PluginInstanceService) DecryptConfig(instance models.PluginInstance) (map[string]interface{}, error) {
	raw, err := utility.DecryptAESGCM(global.ServerConfig.PluginConfigKey, instance.Config)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể giải mã config plugin", common.StatusInternalServerError, err)
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Config plugin giải mã không phải JSON", common.StatusInternalServerError, err)
	}
	return cfg, nil
}

// Create tạo instance mới. Nếu Enabled, các instance anh em cùng capability bị tắt trước.
func (s *PluginInstanceService) Create(ctx context.Context, projectID primitive.ObjectID, input *plugindto.PluginInstanceCreateInput) (models.PluginInstance, error) {
	var zero models.PluginInstance

	if !capability.IsValid(input.Capability) {
		return zero, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Capability %q không được hỗ trợ", input.Capability), common.StatusBadRequest, nil)
	}
	if err := validateConfig(input.Config); err != nil {
		return zero, err
	}

	encrypted, err := encryptConfig(input.Config)
	if err != nil {
		return zero, err
	}

	if input.Enabled {
		if err := s.disableSiblings(ctx, projectID, input.Capability, primitive.NilObjectID); err != nil {
			return zero, err
		}
	}

	instance := models.PluginInstance{
		ProjectID:  projectID,
		Capability: input.Capability,
		Name:       input.Name,
		Enabled:    input.Enabled,
		Config:     encrypted,
	}
	created, err := s.InsertOne(ctx, instance)
	if err != nil {
		return zero, err
	}

	logrus.WithFields(logrus.Fields{
		"projectId":  projectID.Hex(),
		"capability": input.Capability,
		"name":       input.Name,
	}).Info("🔌 [PLUGIN] Đã tạo plugin instance")
	return created, nil
}

// Update cập nhật tên và config; Config nil thì giữ nguyên blob hiện tại.
func (s *PluginInstanceService) Update(ctx context.Context, id primitive.ObjectID, input *plugindto.PluginInstanceUpdateInput) (models.PluginInstance, error) {
	var zero models.PluginInstance

	set := bson.M{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Config != nil {
		if err := validateConfig(input.Config); err != nil {
			return zero, err
		}
		encrypted, err := encryptConfig(input.Config)
		if err != nil {
			return zero, err
		}
		set["config"] = encrypted
	}
	if len(set) == 0 {
		return zero, common.NewError(common.ErrCodeValidationInput, "Không có trường nào để cập nhật", common.StatusBadRequest, nil)
	}

	return s.UpdateById(ctx, id, &basesvc.UpdateData{Set: set})
}

// Enable bật một instance và tắt mọi instance anh em cùng (project, capability)
func (s *PluginInstanceService) Enable(ctx context.Context, id primitive.ObjectID) (models.PluginInstance, error) {
	var zero models.PluginInstance

	instance, err := s.FindOneById(ctx, id)
	if err != nil {
		return zero, err
	}

	if err := s.disableSiblings(ctx, instance.ProjectID, instance.Capability, id); err != nil {
		return zero, err
	}

	updated, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: bson.M{"enabled": true}})
	if err != nil {
		return zero, err
	}

	logrus.WithFields(logrus.Fields{
		"projectId":  instance.ProjectID.Hex(),
		"capability": instance.Capability,
		"name":       instance.Name,
	}).Info("🔌 [PLUGIN] Đã bật plugin instance")
	return updated, nil
}

// Disable tắt một instance
func (s *PluginInstanceService) Disable(ctx context.Context, id primitive.ObjectID) (models.PluginInstance, error) {
	return s.UpdateById(ctx, id, &basesvc.UpdateData{Set: bson.M{"enabled": false}})
}

// disableSiblings tắt các instance enabled cùng (project, capability), trừ excludeID
func (s *PluginInstanceService) disableSiblings(ctx context.Context, projectID primitive.ObjectID, cap string, excludeID primitive.ObjectID) error {
	filter := bson.M{
		"projectId":  projectID,
		"capability": cap,
		"enabled":    true,
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	_, err := s.UpdateMany(ctx, filter, &basesvc.UpdateData{Set: bson.M{"enabled": false}}, nil)
	return err
}

// FindEnabled tìm instance đang bật của một capability trong project
func (s *PluginInstanceService) FindEnabled(ctx context.Context, projectID primitive.ObjectID, cap string) (models.PluginInstance, error) {
	return s.FindOne(ctx, bson.M{
		"projectId":  projectID,
		"capability": cap,
		"enabled":    true,
	}, nil)
}
