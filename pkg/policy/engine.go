// Package policy maps moderation verdicts to enforcement actions. The
// thresholds and severity tables are data, not code, so tuning them is
// a one-line change.
package policy

import (
	"github.com/modflow/modflow/pkg/models"
)

// actionThresholds is the minimum confidence required for each action.
var actionThresholds = map[string]float64{
	models.ActionWarn:    0.3,
	models.ActionTimeout: 0.6,
	models.ActionKick:    0.8,
	models.ActionBan:     0.9,
}

// severityActions restricts which actions a severity level permits.
var severityActions = map[string][]string{
	models.SeverityLow:      {models.ActionWarn},
	models.SeverityMedium:   {models.ActionWarn, models.ActionTimeout},
	models.SeverityHigh:     {models.ActionTimeout, models.ActionKick},
	models.SeverityCritical: {models.ActionKick, models.ActionBan},
}

// actionPreference is checked harshest first; the first permitted
// action whose threshold the confidence clears wins.
var actionPreference = []string{
	models.ActionBan, models.ActionKick, models.ActionTimeout, models.ActionWarn,
}

// escalationMap bumps repeat offenders one step up. Ban is terminal.
var escalationMap = map[string]string{
	models.ActionWarn:    models.ActionTimeout,
	models.ActionTimeout: models.ActionKick,
	models.ActionKick:    models.ActionBan,
	models.ActionBan:     models.ActionBan,
}

// escalationThreshold is the violation count above which repeat
// offenders get the next harsher action.
const escalationThreshold = 5

// BaseAction picks the harshest action the severity permits and the
// confidence justifies. When nothing qualifies the floor is a warning.
func BaseAction(confidence float64, severity string) string {
	permitted := severityActions[severity]
	if permitted == nil {
		permitted = severityActions[models.SeverityLow]
	}

	for _, action := range actionPreference {
		if !contains(permitted, action) {
			continue
		}
		if confidence >= actionThresholds[action] {
			return action
		}
	}
	return models.ActionWarn
}

// Escalate bumps an action one step for repeat offenders.
func Escalate(action string) string {
	if next, ok := escalationMap[action]; ok {
		return next
	}
	return action
}

// DetermineAction combines the base action with the user's violation
// history.
func DetermineAction(confidence float64, severity string, history *models.UserHistory) string {
	action := BaseAction(confidence, severity)
	if history != nil && history.ViolationCount > escalationThreshold {
		action = Escalate(action)
	}
	return action
}

func contains(actions []string, action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
