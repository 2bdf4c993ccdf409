// internal/nlu/slots.go
package nlu

import (
	"regexp"
	"strings"
	"time"

	"mat-bot/internal/models"
)

var (
	typePMRe = regexp.MustCompile(`\bpm\b`)
	typeCMRe = regexp.MustCompile(`\bcm\b`)
)

var techRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(technicians))
	for i, tech := range technicians {
		res[i] = regexp.MustCompile(`\b` + tech + `\b`)
	}
	return res
}()

// ExtractSlots extracts filters from one message against the supplied
// known site/area values, with the current UTC instant as the date
// reference.
func ExtractSlots(text string, knownSites, knownAreas []string) models.Slots {
	return ExtractSlotsAt(text, knownSites, knownAreas, time.Now().UTC())
}

// ExtractSlotsAt is ExtractSlots with an explicit date reference.
func ExtractSlotsAt(text string, knownSites, knownAreas []string, ref time.Time) models.Slots {
	t := Normalize(text)
	var slots models.Slots

	// Order type, evaluated in this order: when a message carries both,
	// the later CM assignment wins.
	if typePMRe.MatchString(t) {
		slots.Type = models.OrderTypePreventive
	}
	if typeCMRe.MatchString(t) {
		slots.Type = models.OrderTypeCorrective
	}

	// Status, first hit wins.
	switch {
	case strings.Contains(t, "abiert"):
		slots.Status = models.StatusOpen
	case strings.Contains(t, "cerrad"):
		slots.Status = models.StatusClosed
	case strings.Contains(t, "progreso"):
		slots.Status = models.StatusInProgress
	}

	// A technician only counts when the message talks about orders, or
	// about open/closed ones.
	if orderNounRe.MatchString(t) || strings.Contains(t, "abiert") || strings.Contains(t, "cerrad") {
		for i, tech := range technicians {
			if techRes[i].MatchString(t) {
				slots.Technician = capitalize(tech)
				break
			}
		}
	}

	slots.DateFrom, slots.DateTo = ResolveDates(t, ref)

	slots.Site = matchKnownValue(t, knownSites)
	slots.Area = matchKnownValue(t, knownAreas)

	return slots
}

// matchKnownValue returns the first known value whose normalized form
// occurs as a whole phrase in the normalized text. The stored spelling is
// returned so downstream equality filters match.
func matchKnownValue(t string, known []string) string {
	for _, v := range known {
		phrase := Normalize(v)
		if phrase != "" && containsPhrase(t, phrase) {
			return v
		}
	}
	return ""
}

func containsPhrase(t, phrase string) bool {
	for idx := 0; ; {
		i := strings.Index(t[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(t[start-1])) && (end == len(t) || !isWordByte(t[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
