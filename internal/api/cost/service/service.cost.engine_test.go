package costsvc

import (
	"testing"
	"time"

	models "meta_response/internal/api/cost/models"
	incidentmodels "meta_response/internal/api/incident/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeActivityAmountSumsSpans(t *testing.T) {
	spans := []models.ParticipantActivity{
		{StartedAt: 0, EndedAt: 1_800_000},         // 30 phút
		{StartedAt: 2_000_000, EndedAt: 3_800_000}, // 30 phút
	}
	amount := ComputeActivityAmount(spans, 100)
	assert.InDelta(t, 100.0, amount, 0.001, "1 giờ hoạt động với đơn giá 100")
}

func TestComputeActivityAmountIgnoresBrokenSpans(t *testing.T) {
	spans := []models.ParticipantActivity{
		{StartedAt: 5_000, EndedAt: 1_000},
		{StartedAt: 0, EndedAt: 3_600_000},
	}
	amount := ComputeActivityAmount(spans, 50)
	assert.InDelta(t, 50.0, amount, 0.001)
}

func TestComputeActivityAmountEmpty(t *testing.T) {
	assert.Zero(t, ComputeActivityAmount(nil, 100))
}

func TestComputeClassicAmountSingleAssigneeHour(t *testing.T) {
	// Một assignee giữ role đúng 3600 giây, annual cost 208000 / 2080 giờ = 100/giờ
	hourlyRate := 208000.0 / 2080.0
	participants := []incidentmodels.Participant{
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleAssignee, AssumedAt: 0, RenouncedAt: 3_600_000},
		}},
	}
	amount := ComputeClassicAmount(participants, hourlyRate, time.Now().UnixMilli(), 0)
	assert.Equal(t, 100.0, amount)
}

func TestComputeClassicAmountRoleMultipliers(t *testing.T) {
	// Scribe (0.75) và observer (0.0) cùng giữ 1 giờ với đơn giá 100
	participants := []incidentmodels.Participant{
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleScribe, AssumedAt: 0, RenouncedAt: 3_600_000},
		}},
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleObserver, AssumedAt: 0, RenouncedAt: 3_600_000},
		}},
	}
	amount := ComputeClassicAmount(participants, 100, time.Now().UnixMilli(), 0)
	assert.Equal(t, 75.0, amount, "observer không tính, scribe tính 75%")
}

func TestComputeClassicAmountOpenSpanClampsToClosedAt(t *testing.T) {
	now := int64(10 * 3_600_000)
	closedAt := int64(2 * 3_600_000)

	participants := []incidentmodels.Participant{
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleCommander, AssumedAt: 0, RenouncedAt: 0},
		}},
	}

	// Subject đã đóng: span đang mở chặn tại closedAt chứ không phải now
	amount := ComputeClassicAmount(participants, 100, now, closedAt)
	assert.Equal(t, 200.0, amount)
}

func TestComputeClassicAmountOpenSpanClampsToNow(t *testing.T) {
	now := int64(3 * 3_600_000)
	participants := []incidentmodels.Participant{
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleCommander, AssumedAt: 0, RenouncedAt: 0},
		}},
	}
	amount := ComputeClassicAmount(participants, 100, now, 0)
	assert.Equal(t, 300.0, amount)
}

func TestComputeClassicAmountCeils(t *testing.T) {
	// 30 phút commander với đơn giá 99: 49.5 làm tròn lên 50
	participants := []incidentmodels.Participant{
		{Roles: []incidentmodels.ParticipantRole{
			{Role: incidentmodels.RoleCommander, AssumedAt: 0, RenouncedAt: 1_800_000},
		}},
	}
	amount := ComputeClassicAmount(participants, 99, time.Now().UnixMilli(), 0)
	assert.Equal(t, 50.0, amount)
}

func TestComputeClassicAmountNoParticipants(t *testing.T) {
	assert.Zero(t, ComputeClassicAmount(nil, 100, time.Now().UnixMilli(), 0))
}

func TestActivityAmountMonotonicity(t *testing.T) {
	spans := []models.ParticipantActivity{{StartedAt: 0, EndedAt: 3_600_000}}
	before := ComputeActivityAmount(spans, 100)

	spans = append(spans, models.ParticipantActivity{StartedAt: 4_000_000, EndedAt: 4_900_000})
	after := ComputeActivityAmount(spans, 100)
	assert.GreaterOrEqual(t, after, before, "thêm activity không bao giờ làm giảm chi phí")
}
