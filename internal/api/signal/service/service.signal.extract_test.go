package signalsvc

import (
	"testing"

	models "meta_response/internal/api/signal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func entityType(name, field, regex string) models.EntityType {
	return models.EntityType{
		ID:                primitive.NewObjectID(),
		Name:              name,
		Field:             field,
		RegularExpression: regex,
		Enabled:           true,
	}
}

func values(candidates []Candidate) []string {
	var out []string
	for _, c := range candidates {
		out = append(out, c.Value)
	}
	return out
}

func TestExtractSimplePath(t *testing.T) {
	raw := map[string]interface{}{"host": "h1", "evt": "x"}
	got := ExtractCandidates(raw, []models.EntityType{entityType("host", "$.host", "")})
	assert.Equal(t, []string{"h1"}, values(got))
}

func TestExtractMissingPathNoValues(t *testing.T) {
	raw := map[string]interface{}{"host": "h1"}
	got := ExtractCandidates(raw, []models.EntityType{entityType("user", "$.user", "")})
	assert.Empty(t, got)
}

func TestExtractArrayIteration(t *testing.T) {
	raw := map[string]interface{}{
		"hosts": []interface{}{"h1", "h2", "h1"},
	}
	got := ExtractCandidates(raw, []models.EntityType{entityType("host", "$.hosts[*]", "")})
	assert.ElementsMatch(t, []string{"h1", "h2"}, values(got))
}

func TestExtractCoercesNonStrings(t *testing.T) {
	raw := map[string]interface{}{
		"port":   float64(443),
		"secure": true,
	}
	got := ExtractCandidates(raw, []models.EntityType{
		entityType("port", "$.port", ""),
		entityType("secure", "$.secure", ""),
	})
	assert.ElementsMatch(t, []string{"443", "true"}, values(got))
}

func TestExtractRegexCaptureGroup(t *testing.T) {
	raw := map[string]interface{}{"msg": "login failed for user alice from 10.0.0.5"}
	got := ExtractCandidates(raw, []models.EntityType{
		entityType("user", "$.msg", `user (\w+)`),
	})
	assert.Equal(t, []string{"alice"}, values(got))
}

func TestExtractRegexWholeMatchWithoutGroups(t *testing.T) {
	raw := map[string]interface{}{"msg": "ips: 10.0.0.5 and 10.0.0.9"}
	got := ExtractCandidates(raw, []models.EntityType{
		entityType("ip", "$.msg", `\d+\.\d+\.\d+\.\d+`),
	})
	assert.ElementsMatch(t, []string{"10.0.0.5", "10.0.0.9"}, values(got))
}

func TestExtractMalformedRegexSkipsType(t *testing.T) {
	raw := map[string]interface{}{"host": "h1"}
	got := ExtractCandidates(raw, []models.EntityType{
		entityType("broken", "$.host", `(`),
		entityType("host", "$.host", ""),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "h1", got[0].Value)
}

func TestExtractTrimsAndDropsEmpty(t *testing.T) {
	raw := map[string]interface{}{"host": "  h1  ", "empty": "   "}
	got := ExtractCandidates(raw, []models.EntityType{
		entityType("host", "$.host", ""),
		entityType("empty", "$.empty", ""),
	})
	assert.Equal(t, []string{"h1"}, values(got))
}

func TestExtractDisabledTypeSkipped(t *testing.T) {
	disabled := entityType("host", "$.host", "")
	disabled.Enabled = false
	raw := map[string]interface{}{"host": "h1"}
	assert.Empty(t, ExtractCandidates(raw, []models.EntityType{disabled}))
}
