// internal/models/intent.go
package models

// Intent is the closed set of requests the assistant understands.
type Intent string

const (
	IntentHelp         Intent = "HELP"
	IntentMTTR         Intent = "MTTR"
	IntentMTBF         Intent = "MTBF"
	IntentPMCompliance Intent = "PM_COMPLIANCE"
	IntentBacklog      Intent = "BACKLOG"
	IntentCosts        Intent = "COSTS"
	IntentTopDowntime  Intent = "TOP_DOWNTIME"
	IntentStatusCounts Intent = "STATUS_COUNTS"
	IntentTechByPerson Intent = "TECH_BY_PERSON"
)

// IsKPI reports whether the intent triggers a data query and therefore
// receives the month-to-date default window when no dates were resolved.
func (i Intent) IsKPI() bool {
	switch i {
	case IntentMTTR, IntentMTBF, IntentPMCompliance, IntentBacklog,
		IntentCosts, IntentTopDowntime, IntentStatusCounts, IntentTechByPerson:
		return true
	}
	return false
}
