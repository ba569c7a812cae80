package signalsvc

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	models "meta_response/internal/api/signal/models"
	"meta_response/internal/filterexpr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestFingerprintFromValuesOrderInvariant(t *testing.T) {
	a := FingerprintFromValues([]string{"h1", "h2", "db-3"})
	b := FingerprintFromValues([]string{"db-3", "h2", "h1"})
	assert.Equal(t, a, b)
}

func TestFingerprintSingleValue(t *testing.T) {
	assert.Equal(t, sha1Hex("h1"), FingerprintFromValues([]string{"h1"}))
}

func TestFingerprintFromRawStable(t *testing.T) {
	a, err := FingerprintFromRaw(map[string]interface{}{"b": float64(2), "a": "x"})
	require.NoError(t, err)
	b, err := FingerprintFromRaw(map[string]interface{}{"a": "x", "b": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeFingerprintUsesTagTypes(t *testing.T) {
	rule := &models.DuplicationRule{TagTypes: []string{"host"}}
	valuesByType := map[string][]string{
		"host": {"h1"},
		"user": {"alice"},
	}
	got, err := computeFingerprint(rule, valuesByType, map[string]interface{}{"host": "h1"})
	require.NoError(t, err)
	assert.Equal(t, sha1Hex("h1"), got)
}

func TestComputeFingerprintEmptyTagTypesFallsBackToRaw(t *testing.T) {
	raw := map[string]interface{}{"host": "h1", "evt": "x"}
	want, err := FingerprintFromRaw(raw)
	require.NoError(t, err)

	// Rule tồn tại nhưng tag types rỗng: rơi về raw-hash
	got, err := computeFingerprint(&models.DuplicationRule{}, map[string][]string{"host": {"h1"}}, raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Tag types khai báo nhưng không chọn ra giá trị nào: cũng rơi về raw-hash
	got, err = computeFingerprint(&models.DuplicationRule{TagTypes: []string{"user"}}, map[string][]string{"host": {"h1"}}, raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDuplicationRuleWindowDefault(t *testing.T) {
	var rule *models.DuplicationRule
	assert.Equal(t, models.DefaultDedupeWindowSeconds, rule.Window())
	assert.Equal(t, int64(600), (&models.DuplicationRule{WindowSeconds: 600}).Window())
}

func snoozeFilter(name, expression string, mode string, expiration time.Time) models.SignalFilter {
	var exp int64
	if !expiration.IsZero() {
		exp = expiration.UnixMilli()
	}
	return models.SignalFilter{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Expression: expression,
		Mode:       mode,
		Action:     models.FilterActionSnooze,
		Expiration: exp,
	}
}

func TestEvaluateSnoozeActiveMatch(t *testing.T) {
	now := time.Now()
	filters := []models.SignalFilter{
		snoozeFilter("snooze-h1",
			`{"and":[{"model":"Entity","field":"value","op":"==","value":"h1"}]}`,
			models.FilterModeActive, now.Add(time.Hour)),
	}
	row := filterexpr.Row{"host": "h1"}
	loader := func(model string) []filterexpr.Row {
		if model == "Entity" {
			return []filterexpr.Row{{"type": "host", "value": "h1"}}
		}
		return nil
	}

	matched := EvaluateSnooze(filters, row, loader, now, nil)
	require.NotNil(t, matched)
	assert.Equal(t, "snooze-h1", matched.Name)
}

func TestEvaluateSnoozeExpiredFallsThrough(t *testing.T) {
	now := time.Now()
	filters := []models.SignalFilter{
		snoozeFilter("snooze-h1",
			`{"and":[{"model":"Entity","field":"value","op":"==","value":"h1"}]}`,
			models.FilterModeActive, now.Add(-time.Hour)),
	}
	loader := func(string) []filterexpr.Row {
		return []filterexpr.Row{{"value": "h1"}}
	}

	assert.Nil(t, EvaluateSnooze(filters, filterexpr.Row{}, loader, now, nil))
}

func TestEvaluateSnoozeMonitorOnlyCounts(t *testing.T) {
	now := time.Now()
	filters := []models.SignalFilter{
		snoozeFilter("monitor-h1", `{"field":"host","op":"==","value":"h1"}`, models.FilterModeMonitor, now.Add(time.Hour)),
	}
	row := filterexpr.Row{"host": "h1"}

	var counted []string
	matched := EvaluateSnooze(filters, row, nil, now, func(f models.SignalFilter) {
		counted = append(counted, f.Name)
	})
	assert.Nil(t, matched)
	assert.Equal(t, []string{"monitor-h1"}, counted)
}

func TestEvaluateSnoozeInactiveSkipped(t *testing.T) {
	now := time.Now()
	filters := []models.SignalFilter{
		snoozeFilter("inactive", `{"field":"host","op":"==","value":"h1"}`, models.FilterModeInactive, now.Add(time.Hour)),
	}
	var counted int
	matched := EvaluateSnooze(filters, filterexpr.Row{"host": "h1"}, nil, now, func(models.SignalFilter) { counted++ })
	assert.Nil(t, matched)
	assert.Zero(t, counted)
}

func TestEvaluateSnoozeNoExpirationNeverExpires(t *testing.T) {
	now := time.Now()
	filters := []models.SignalFilter{
		snoozeFilter("forever", `{"field":"host","op":"==","value":"h1"}`, models.FilterModeActive, time.Time{}),
	}
	matched := EvaluateSnooze(filters, filterexpr.Row{"host": "h1"}, nil, now, nil)
	require.NotNil(t, matched)
}

func TestBuildInstanceRowMergesMetadata(t *testing.T) {
	signal := models.Signal{Name: "S1", Variant: "s1-v"}
	row := buildInstanceRow(signal, map[string]interface{}{"host": "h1"}, "fp")
	assert.Equal(t, "h1", row["host"])
	assert.Equal(t, "S1", row["signal"])
	assert.Equal(t, "s1-v", row["variant"])
	assert.Equal(t, "fp", row["fingerprint"])
}
