package pluginsvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"meta_response/internal/api/events"
	"meta_response/internal/api/plugin/capability"
	models "meta_response/internal/api/plugin/models"
	"meta_response/internal/api/plugin/webhook"
	"meta_response/internal/common"
	"meta_response/internal/global"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const registryCacheSize = 256

// PluginRegistryService resolve instance đang bật cho một (project, capability),
// cache kết quả trong LRU in-memory. Mọi write lên plugin_instances làm cache
// bị xóa qua event bus, lần đọc kế tiếp refresh từ DB.
type PluginRegistryService struct {
	instances *PluginInstanceService
	cache     *lru.Cache[string, models.PluginInstance]
}

var (
	registryOnce     sync.Once
	registryInstance *PluginRegistryService
	registryErr      error
)

// GetRegistry trả về registry singleton dùng chung cho toàn process
func GetRegistry() (*PluginRegistryService, error) {
	registryOnce.Do(func() {
		registryInstance, registryErr = NewPluginRegistryService()
	})
	return registryInstance, registryErr
}

// NewPluginRegistryService tạo registry và đăng ký invalidation lên event bus
func NewPluginRegistryService() (*PluginRegistryService, error) {
	instanceService, err := NewPluginInstanceService()
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, models.PluginInstance](registryCacheSize)
	if err != nil {
		return nil, err
	}

	s := &PluginRegistryService{
		instances: instanceService,
		cache:     cache,
	}

	events.OnDataChanged(func(_ context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.PluginInstances {
			return
		}
		s.cache.Purge()
		logrus.Debug("🔌 [PLUGIN] Cache registry đã được xóa sau thay đổi plugin instance")
	})

	return s, nil
}

func cacheKey(projectID primitive.ObjectID, cap string) string {
	return projectID.Hex() + "/" + cap
}

// Resolve tìm instance đang bật cho (project, capability).
// Trả về common.ErrPluginUnavailable khi không có instance nào được bật.
func (s *PluginRegistryService) Resolve(ctx context.Context, projectID primitive.ObjectID, cap string) (models.PluginInstance, error) {
	key := cacheKey(projectID, cap)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	instance, err := s.instances.FindEnabled(ctx, projectID, cap)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return instance, common.ErrPluginUnavailable
		}
		return instance, err
	}

	s.cache.Add(key, instance)
	return instance, nil
}

// adapter resolve instance rồi dựng webhook adapter từ config đã giải mã
func (s *PluginRegistryService) adapter(ctx context.Context, projectID primitive.ObjectID, cap string) (*webhook.Adapter, error) {
	instance, err := s.Resolve(ctx, projectID, cap)
	if err != nil {
		return nil, err
	}

	cfg, err := s.instances.DecryptConfig(instance)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(global.ServerConfig.PluginCallTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return webhook.NewAdapter(cap, cfg, timeout), nil
}

// Ticket trả về plugin ticket đang bật của project
func (s *PluginRegistryService) Ticket(ctx context.Context, projectID primitive.ObjectID) (capability.TicketPlugin, error) {
	return s.adapter(ctx, projectID, capability.Ticket)
}

// Chat trả về plugin chat đang bật của project
func (s *PluginRegistryService) Chat(ctx context.Context, projectID primitive.ObjectID) (capability.ChatPlugin, error) {
	return s.adapter(ctx, projectID, capability.Chat)
}

// Storage trả về plugin storage đang bật của project
func (s *PluginRegistryService) Storage(ctx context.Context, projectID primitive.ObjectID) (capability.StoragePlugin, error) {
	return s.adapter(ctx, projectID, capability.Storage)
}

// Document trả về plugin document đang bật của project
func (s *PluginRegistryService) Document(ctx context.Context, projectID primitive.ObjectID) (capability.DocumentPlugin, error) {
	return s.adapter(ctx, projectID, capability.Document)
}

// Oncall trả về plugin oncall đang bật của project
func (s *PluginRegistryService) Oncall(ctx context.Context, projectID primitive.ObjectID) (capability.OncallPlugin, error) {
	return s.adapter(ctx, projectID, capability.Oncall)
}

// Email trả về plugin email đang bật của project
func (s *PluginRegistryService) Email(ctx context.Context, projectID primitive.ObjectID) (capability.EmailPlugin, error) {
	return s.adapter(ctx, projectID, capability.Email)
}

// Conference trả về plugin conference đang bật của project
func (s *PluginRegistryService) Conference(ctx context.Context, projectID primitive.ObjectID) (capability.ConferencePlugin, error) {
	return s.adapter(ctx, projectID, capability.Conference)
}

// ParticipantGroup trả về plugin participant-group đang bật của project
func (s *PluginRegistryService) ParticipantGroup(ctx context.Context, projectID primitive.ObjectID) (capability.ParticipantGroupPlugin, error) {
	return s.adapter(ctx, projectID, capability.ParticipantGroup)
}

// AuthProvider trả về plugin auth-provider đang bật của project
func (s *PluginRegistryService) AuthProvider(ctx context.Context, projectID primitive.ObjectID) (capability.AuthProviderPlugin, error) {
	return s.adapter(ctx, projectID, capability.AuthProvider)
}

// SignalEnrichment trả về plugin signal-enrichment đang bật của project
func (s *PluginRegistryService) SignalEnrichment(ctx context.Context, projectID primitive.ObjectID) (capability.SignalEnrichmentPlugin, error) {
	return s.adapter(ctx, projectID, capability.SignalEnrichment)
}
