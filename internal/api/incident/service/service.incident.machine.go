package incidentsvc

import (
	"fmt"

	models "meta_response/internal/api/incident/models"
	"meta_response/internal/common"
	"meta_response/internal/utility"
)

// Các transition hợp lệ. Trạng thái closed của case là terminal;
// incident closed có thể reopen về active.
var caseTransitions = map[string][]string{
	models.CaseStatusNew:       {models.CaseStatusTriage, models.CaseStatusEscalated, models.CaseStatusClosed},
	models.CaseStatusTriage:    {models.CaseStatusEscalated, models.CaseStatusClosed},
	models.CaseStatusEscalated: {models.CaseStatusClosed},
	models.CaseStatusClosed:    {},
}

var incidentTransitions = map[string][]string{
	models.IncidentStatusActive: {models.IncidentStatusStable, models.IncidentStatusClosed},
	models.IncidentStatusStable: {models.IncidentStatusActive, models.IncidentStatusClosed},
	models.IncidentStatusClosed: {models.IncidentStatusActive}, // reopen
}

// CanTransitionCase kiểm tra transition của case có hợp lệ không
func CanTransitionCase(from, to string) bool {
	return utility.SliceContains(caseTransitions[from], to)
}

// CanTransitionIncident kiểm tra transition của incident có hợp lệ không
func CanTransitionIncident(from, to string) bool {
	return utility.SliceContains(incidentTransitions[from], to)
}

func illegalTransition(kind, from, to string) error {
	return common.NewError(common.ErrCodeBusinessState,
		fmt.Sprintf("Không thể chuyển %s từ %q sang %q", kind, from, to),
		common.StatusBadRequest, nil)
}

// guardCaseTransition kiểm tra điều kiện trước khi chuyển trạng thái case.
// Guard thất bại thì trạng thái giữ nguyên.
func guardCaseTransition(c *models.Case, to, resolution, resolutionReason string) error {
	if !CanTransitionCase(c.Status, to) {
		return illegalTransition("case", c.Status, to)
	}
	switch to {
	case models.CaseStatusTriage:
		if c.AssigneeID.IsZero() {
			return common.NewError(common.ErrCodeBusinessState, "Chuyển sang triage yêu cầu assignee", common.StatusBadRequest, nil)
		}
	case models.CaseStatusClosed:
		if resolution == "" || resolutionReason == "" {
			return common.NewError(common.ErrCodeBusinessState, "Đóng case yêu cầu resolution và resolution reason", common.StatusBadRequest, nil)
		}
	}
	return nil
}

// guardIncidentTransition kiểm tra điều kiện trước khi chuyển trạng thái incident
func guardIncidentTransition(inc *models.Incident, to, resolution, resolutionReason string) error {
	if !CanTransitionIncident(inc.Status, to) {
		return illegalTransition("incident", inc.Status, to)
	}
	if to == models.IncidentStatusClosed {
		if resolution == "" || resolutionReason == "" {
			return common.NewError(common.ErrCodeBusinessState, "Đóng incident yêu cầu resolution và resolution reason", common.StatusBadRequest, nil)
		}
	}
	return nil
}
