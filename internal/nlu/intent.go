// internal/nlu/intent.go
package nlu

import (
	"regexp"
	"strings"

	"mat-bot/internal/models"
)

// fillerRe strips lead-in politeness before pattern matching, so that
// "dime el mttr" and "mttr" read the same.
var fillerRe = regexp.MustCompile(`(?:dime|muestr(?:a|ame)|podrias|puedes|por favor|como esta|cual es|indica|reporta|quiero saber|me dices)`)

// orderNounRe matches the work-order nouns as whole words.
var orderNounRe = regexp.MustCompile(`\b(ordenes|órdenes|ots)\b`)

// intentRule binds one intent to its pattern. The table is ordered and the
// first matching rule wins.
type intentRule struct {
	intent  models.Intent
	pattern *regexp.Regexp
}

var intentRules = []intentRule{
	{models.IntentMTTR, regexp.MustCompile(`\b(mttr|tiempo medio de reparacion)\b`)},
	{models.IntentMTBF, regexp.MustCompile(`\b(mtbf|tiempo medio entre fallas)\b`)},
	{models.IntentPMCompliance, regexp.MustCompile(`\b(cumplimiento\s*pm|pm compliance|preventiv[oa]s?\s*cumplimiento|cumplimiento\s*de\s*pm)\b`)},
	{models.IntentBacklog, regexp.MustCompile(`\b(backlog|atraso)\b`)},
	{models.IntentCosts, regexp.MustCompile(`\b(costos?|gastos?)\b`)},
	{models.IntentTopDowntime, regexp.MustCompile(`\b(paradas|downtime|tiempo muerto|top downtime)\b`)},
	{models.IntentStatusCounts, regexp.MustCompile(`\b(estados?|estado|conteos?)\b`)},
	{models.IntentTechByPerson, regexp.MustCompile(`\b(cuant[ao]s?)\b.*\b(ordenes|órdenes|ots)\b.*\b(tiene)\b`)},
	{models.IntentStatusCounts, regexp.MustCompile(`\b(cuant[ao]s?)\b.*\b(ordenes|órdenes|ots)\b.*\b(abiert[as]?|cerrad[as]?|progreso|en progreso|totales?)\b.*\b(hay)\b`)},
}

// DetectIntent classifies one message. It is total: every input maps to
// some intent and unknown text degrades to HELP.
func DetectIntent(text string) models.Intent {
	t := Normalize(text)

	if containsAny(t, greetings) {
		return models.IntentHelp
	}

	// A work-order noun with no technician named is always the status
	// summary, regardless of what else the pattern table would match.
	if orderNounRe.MatchString(t) && !mentionsTechnician(t) {
		return models.IntentStatusCounts
	}

	stripped := fillerRe.ReplaceAllString(t, "")
	for _, rule := range intentRules {
		if rule.pattern.MatchString(stripped) {
			return rule.intent
		}
	}

	// A technician named together with an open/closed/progress word is a
	// per-technician question even without the order noun.
	if mentionsTechnician(t) &&
		(strings.Contains(t, "abiert") || strings.Contains(t, "cerrad") || strings.Contains(t, "progreso")) {
		return models.IntentTechByPerson
	}

	return models.IntentHelp
}

func mentionsTechnician(t string) bool {
	for _, tech := range technicians {
		if strings.Contains(t, tech) {
			return true
		}
	}
	return false
}
