package incidentsvc

import (
	"testing"

	models "meta_response/internal/api/incident/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCaseTransitionTable(t *testing.T) {
	legal := []struct{ from, to string }{
		{models.CaseStatusNew, models.CaseStatusTriage},
		{models.CaseStatusNew, models.CaseStatusEscalated},
		{models.CaseStatusNew, models.CaseStatusClosed},
		{models.CaseStatusTriage, models.CaseStatusEscalated},
		{models.CaseStatusTriage, models.CaseStatusClosed},
		{models.CaseStatusEscalated, models.CaseStatusClosed},
	}
	for _, tc := range legal {
		assert.True(t, CanTransitionCase(tc.from, tc.to), "%s -> %s phải hợp lệ", tc.from, tc.to)
	}

	illegal := []struct{ from, to string }{
		{models.CaseStatusTriage, models.CaseStatusNew},
		{models.CaseStatusEscalated, models.CaseStatusTriage},
		{models.CaseStatusClosed, models.CaseStatusNew},
		{models.CaseStatusClosed, models.CaseStatusTriage},
		{models.CaseStatusClosed, models.CaseStatusEscalated},
		{models.CaseStatusNew, models.CaseStatusNew},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransitionCase(tc.from, tc.to), "%s -> %s phải bị chặn", tc.from, tc.to)
	}
}

func TestIncidentTransitionTableAllowsReopen(t *testing.T) {
	assert.True(t, CanTransitionIncident(models.IncidentStatusActive, models.IncidentStatusStable))
	assert.True(t, CanTransitionIncident(models.IncidentStatusActive, models.IncidentStatusClosed))
	assert.True(t, CanTransitionIncident(models.IncidentStatusStable, models.IncidentStatusActive))
	assert.True(t, CanTransitionIncident(models.IncidentStatusStable, models.IncidentStatusClosed))
	assert.True(t, CanTransitionIncident(models.IncidentStatusClosed, models.IncidentStatusActive))

	assert.False(t, CanTransitionIncident(models.IncidentStatusClosed, models.IncidentStatusStable))
	assert.False(t, CanTransitionIncident(models.IncidentStatusActive, models.IncidentStatusActive))
}

func TestGuardCaseTriageRequiresAssignee(t *testing.T) {
	c := &models.Case{Status: models.CaseStatusNew}
	err := guardCaseTransition(c, models.CaseStatusTriage, "", "")
	require.Error(t, err)

	c.AssigneeID = primitive.NewObjectID()
	require.NoError(t, guardCaseTransition(c, models.CaseStatusTriage, "", ""))
}

func TestGuardCaseCloseRequiresResolution(t *testing.T) {
	c := &models.Case{Status: models.CaseStatusTriage, AssigneeID: primitive.NewObjectID()}

	require.Error(t, guardCaseTransition(c, models.CaseStatusClosed, "", ""))
	require.Error(t, guardCaseTransition(c, models.CaseStatusClosed, "đã xử lý", ""))
	require.Error(t, guardCaseTransition(c, models.CaseStatusClosed, "", "false_positive"))
	require.NoError(t, guardCaseTransition(c, models.CaseStatusClosed, "đã xử lý", "false_positive"))
}

func TestGuardCaseIllegalTransitionKeepsState(t *testing.T) {
	c := &models.Case{Status: models.CaseStatusClosed}
	err := guardCaseTransition(c, models.CaseStatusTriage, "", "")
	require.Error(t, err)
	assert.Equal(t, models.CaseStatusClosed, c.Status)
}

func TestGuardIncidentCloseRequiresResolution(t *testing.T) {
	inc := &models.Incident{Status: models.IncidentStatusStable}

	require.Error(t, guardIncidentTransition(inc, models.IncidentStatusClosed, "", ""))
	require.NoError(t, guardIncidentTransition(inc, models.IncidentStatusClosed, "khắc phục xong", "resolved"))
}

func TestGuardIncidentReopenNeedsNoResolution(t *testing.T) {
	inc := &models.Incident{Status: models.IncidentStatusClosed}
	require.NoError(t, guardIncidentTransition(inc, models.IncidentStatusActive, "", ""))
}
