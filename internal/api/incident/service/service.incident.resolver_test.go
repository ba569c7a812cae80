package incidentsvc

import (
	"testing"

	models "meta_response/internal/api/incident/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func policy(role string, order int, opts func(*models.IncidentRole)) models.IncidentRole {
	p := models.IncidentRole{
		ID:      primitive.NewObjectID(),
		Role:    role,
		Enabled: true,
		Order:   order,
	}
	if opts != nil {
		opts(&p)
	}
	return p
}

func TestSelectPolicyLowestOrderWins(t *testing.T) {
	p10 := policy(models.RoleCommander, 10, nil)
	p20 := policy(models.RoleCommander, 20, nil)

	chosen := SelectPolicy([]models.IncidentRole{p20, p10}, PolicyTarget{})
	require.NotNil(t, chosen)
	assert.Equal(t, p10.ID, chosen.ID)
}

func TestSelectPolicyTieBrokenByID(t *testing.T) {
	a := policy(models.RoleCommander, 5, nil)
	b := policy(models.RoleCommander, 5, nil)

	expected := a
	if b.ID.Hex() < a.ID.Hex() {
		expected = b
	}
	chosen := SelectPolicy([]models.IncidentRole{a, b}, PolicyTarget{})
	require.NotNil(t, chosen)
	assert.Equal(t, expected.ID, chosen.ID)
}

func TestSelectPolicyDisabledExcluded(t *testing.T) {
	disabled := policy(models.RoleCommander, 1, func(p *models.IncidentRole) { p.Enabled = false })
	enabled := policy(models.RoleCommander, 99, nil)

	chosen := SelectPolicy([]models.IncidentRole{disabled, enabled}, PolicyTarget{})
	require.NotNil(t, chosen)
	assert.Equal(t, enabled.ID, chosen.ID)
}

func TestSelectPolicyPriorityMatchBeatsWildcard(t *testing.T) {
	priorityID := primitive.NewObjectID()
	specific := policy(models.RoleCommander, 50, func(p *models.IncidentRole) {
		p.IncidentPriorityIDs = []primitive.ObjectID{priorityID}
	})
	wildcard := policy(models.RoleCommander, 1, nil)

	chosen := SelectPolicy([]models.IncidentRole{wildcard, specific}, PolicyTarget{PriorityID: priorityID})
	require.NotNil(t, chosen)
	assert.Equal(t, specific.ID, chosen.ID, "policy khớp priority phải thắng wildcard dù order cao hơn")
}

func TestSelectPolicyDeclaredButNotMatchingExcluded(t *testing.T) {
	otherPriority := primitive.NewObjectID()
	declared := policy(models.RoleCommander, 1, func(p *models.IncidentRole) {
		p.IncidentPriorityIDs = []primitive.ObjectID{otherPriority}
	})
	wildcard := policy(models.RoleCommander, 99, nil)

	chosen := SelectPolicy([]models.IncidentRole{declared, wildcard}, PolicyTarget{PriorityID: primitive.NewObjectID()})
	require.NotNil(t, chosen)
	assert.Equal(t, wildcard.ID, chosen.ID, "policy khai báo priority khác phải bị loại")
}

func TestSelectPolicyPriorityBeatsType(t *testing.T) {
	priorityID := primitive.NewObjectID()
	typeID := primitive.NewObjectID()

	byPriority := policy(models.RoleCommander, 50, func(p *models.IncidentRole) {
		p.IncidentPriorityIDs = []primitive.ObjectID{priorityID}
	})
	byType := policy(models.RoleCommander, 1, func(p *models.IncidentRole) {
		p.IncidentTypeIDs = []primitive.ObjectID{typeID}
	})

	chosen := SelectPolicy([]models.IncidentRole{byType, byPriority}, PolicyTarget{PriorityID: priorityID, TypeID: typeID})
	require.NotNil(t, chosen)
	assert.Equal(t, byPriority.ID, chosen.ID)
}

func TestSelectPolicyTagSubset(t *testing.T) {
	tagA := primitive.NewObjectID()
	tagB := primitive.NewObjectID()

	subset := policy(models.RoleLiaison, 10, func(p *models.IncidentRole) {
		p.TagIDs = []primitive.ObjectID{tagA}
	})
	superset := policy(models.RoleLiaison, 1, func(p *models.IncidentRole) {
		p.TagIDs = []primitive.ObjectID{tagA, tagB, primitive.NewObjectID()}
	})

	// Incident mang tagA+tagB: policy yêu cầu tập con {tagA} khớp,
	// policy yêu cầu tag không có trên incident thì không
	chosen := SelectPolicy([]models.IncidentRole{subset, superset}, PolicyTarget{TagIDs: []primitive.ObjectID{tagA, tagB}})
	require.NotNil(t, chosen)
	assert.Equal(t, subset.ID, chosen.ID)
}

func TestSelectPolicyNoCandidates(t *testing.T) {
	assert.Nil(t, SelectPolicy(nil, PolicyTarget{}))

	disabled := policy(models.RoleScribe, 1, func(p *models.IncidentRole) { p.Enabled = false })
	assert.Nil(t, SelectPolicy([]models.IncidentRole{disabled}, PolicyTarget{}))
}

func TestSelectPolicyAllDeclaredNoneMatch(t *testing.T) {
	declared := policy(models.RoleCommander, 1, func(p *models.IncidentRole) {
		p.IncidentPriorityIDs = []primitive.ObjectID{primitive.NewObjectID()}
	})
	assert.Nil(t, SelectPolicy([]models.IncidentRole{declared}, PolicyTarget{PriorityID: primitive.NewObjectID()}),
		"mọi policy đều khai báo nhưng không khớp thì không chọn policy nào")
}
