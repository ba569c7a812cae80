package incidentsvc

import (
	"context"
	"errors"
	"sort"

	authsvc "meta_response/internal/api/auth/service"
	models "meta_response/internal/api/incident/models"
	pluginsvc "meta_response/internal/api/plugin/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"

	basesvc "meta_response/internal/api/base/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentRoleService quản lý các policy gán role
type IncidentRoleService struct {
	*basesvc.BaseServiceMongoImpl[models.IncidentRole]
}

// NewIncidentRoleService tạo mới IncidentRoleService
func NewIncidentRoleService() (*IncidentRoleService, error) {
	col, err := collectionFor(global.MongoDB_ColNames.IncidentRoles)
	if err != nil {
		return nil, err
	}
	return &IncidentRoleService{basesvc.NewBaseServiceMongo[models.IncidentRole](col)}, nil
}

// FindCandidates trả về các policy enabled của (project, role)
func (s *IncidentRoleService) FindCandidates(ctx context.Context, projectID primitive.ObjectID, role string) ([]models.IncidentRole, error) {
	return s.Find(ctx, bson.M{
		"projectId": projectID,
		"role":      role,
		"enabled":   true,
	}, nil)
}

// PolicyTarget mô tả incident đang cần gán role, đủ cho việc chọn policy
type PolicyTarget struct {
	PriorityID primitive.ObjectID
	TypeID     primitive.ObjectID
	TagIDs     []primitive.ObjectID
}

// SelectPolicy chọn policy khớp nhất theo thứ tự: priority → type → tag subset →
// Order thấp nhất (hòa thì id thấp nhất). Deterministic với cùng đầu vào.
func SelectPolicy(policies []models.IncidentRole, target PolicyTarget) *models.IncidentRole {
	remaining := make([]models.IncidentRole, 0, len(policies))
	for _, policy := range policies {
		if policy.Enabled {
			remaining = append(remaining, policy)
		}
	}

	remaining = narrow(remaining,
		func(p models.IncidentRole) bool { return len(p.IncidentPriorityIDs) > 0 },
		func(p models.IncidentRole) bool { return containsID(p.IncidentPriorityIDs, target.PriorityID) })
	remaining = narrow(remaining,
		func(p models.IncidentRole) bool { return len(p.IncidentTypeIDs) > 0 },
		func(p models.IncidentRole) bool { return containsID(p.IncidentTypeIDs, target.TypeID) })
	remaining = narrow(remaining,
		func(p models.IncidentRole) bool { return len(p.TagIDs) > 0 },
		func(p models.IncidentRole) bool { return subsetOf(p.TagIDs, target.TagIDs) })

	if len(remaining) == 0 {
		return nil
	}

	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].Order != remaining[j].Order {
			return remaining[i].Order < remaining[j].Order
		}
		return remaining[i].ID.Hex() < remaining[j].ID.Hex()
	})
	return &remaining[0]
}

// narrow lọc theo một chiều ràng buộc. Policy khai báo chiều này và khớp được
// ưu tiên hơn policy không khai báo; policy khai báo nhưng không khớp bị loại.
func narrow(policies []models.IncidentRole, declared, matches func(models.IncidentRole) bool) []models.IncidentRole {
	var matched, wildcard []models.IncidentRole
	for _, policy := range policies {
		if !declared(policy) {
			wildcard = append(wildcard, policy)
			continue
		}
		if matches(policy) {
			matched = append(matched, policy)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return wildcard
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func subsetOf(subset, superset []primitive.ObjectID) bool {
	for _, id := range subset {
		if !containsID(superset, id) {
			return false
		}
	}
	return true
}

// RoleResolver chọn người nhận một role cho incident theo các policy khai báo
type RoleResolver struct {
	policies *IncidentRoleService
	users    *authsvc.UserService
	registry *pluginsvc.PluginRegistryService
}

// NewRoleResolver tạo mới RoleResolver
func NewRoleResolver() (*RoleResolver, error) {
	policies, err := NewIncidentRoleService()
	if err != nil {
		return nil, err
	}
	users, err := authsvc.NewUserService()
	if err != nil {
		return nil, err
	}
	registry, err := pluginsvc.GetRegistry()
	if err != nil {
		return nil, err
	}
	return &RoleResolver{policies: policies, users: users, registry: registry}, nil
}

// Resolution là kết quả resolve: user được chọn và policy đã dùng
type Resolution struct {
	UserID primitive.ObjectID
	Email  string
	Policy *models.IncidentRole
}

// Resolve chọn user cho (role, incident). Policy trỏ service thì hỏi oncall
// hiện tại qua plugin; trỏ cá nhân thì dùng trực tiếp.
func (r *RoleResolver) Resolve(ctx context.Context, projectID primitive.ObjectID, role string, target PolicyTarget) (*Resolution, error) {
	candidates, err := r.policies.FindCandidates(ctx, projectID, role)
	if err != nil {
		return nil, err
	}

	policy := SelectPolicy(candidates, target)
	if policy == nil {
		return nil, common.NewError(common.ErrCodeDatabaseQuery,
			"Không có policy nào cho role "+role, common.StatusNotFound, nil)
	}

	if policy.ServiceRef == "" {
		if policy.IndividualID.IsZero() {
			return nil, common.NewError(common.ErrCodeBusinessState,
				"Policy không có đích gán (service hoặc cá nhân)", common.StatusBadRequest, nil)
		}
		user, err := r.users.FindOneById(ctx, policy.IndividualID)
		if err != nil {
			return nil, err
		}
		return &Resolution{UserID: user.ID, Email: user.Email, Policy: policy}, nil
	}

	oncall, err := r.registry.Oncall(ctx, projectID)
	if err != nil {
		return nil, err
	}
	shift, err := oncall.Current(ctx, policy.ServiceRef)
	if err != nil {
		return nil, err
	}

	user, err := r.users.FindByEmail(ctx, shift.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			logger.GetAppLogger().WithField("email", shift.Email).
				Warn("Oncall hiện tại không có tài khoản trong hệ thống")
		}
		return nil, err
	}
	return &Resolution{UserID: user.ID, Email: user.Email, Policy: policy}, nil
}
