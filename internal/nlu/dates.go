// internal/nlu/dates.go
package nlu

import (
	"regexp"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// monthNames maps Spanish month names to calendar months, in scan order.
// Both common spellings of September are accepted.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"enero", time.January}, {"febrero", time.February}, {"marzo", time.March},
	{"abril", time.April}, {"mayo", time.May}, {"junio", time.June},
	{"julio", time.July}, {"agosto", time.August},
	{"septiembre", time.September}, {"setiembre", time.September},
	{"octubre", time.October}, {"noviembre", time.November}, {"diciembre", time.December},
}

var monthRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(monthNames))
	for i, m := range monthNames {
		res[i] = regexp.MustCompile(`\b` + m.name + `\b(?:\s+(\d{4}))?`)
	}
	return res
}()

var (
	thisMonthRe = regexp.MustCompile(`\beste mes\b`)
	lastMonthRe = regexp.MustCompile(`\bmes pasado\b`)
	thisWeekRe  = regexp.MustCompile(`\besta semana\b`)
	lastWeekRe  = regexp.MustCompile(`\bsemana pasada\b`)
	lastDaysRe  = regexp.MustCompile(`\bultimos?\s+(\d+)\s+dias\b`)
	explicitRe  = regexp.MustCompile(`\bdesde\s+(\d{4}-\d{2}-\d{2})\s+hasta\s+(\d{4}-\d{2}-\d{2})\b`)
)

// ResolveDates resolves a date phrase in already-normalized text into an
// inclusive [from, to] window of YYYY-MM-DD strings relative to ref
// (expected in UTC). The cascade is ordered and the first matching rule
// wins; when nothing matches both strings are empty.
func ResolveDates(t string, ref time.Time) (string, string) {
	if from, to, ok := namedMonthWindow(t, ref); ok {
		return from, to
	}
	if thisMonthRe.MatchString(t) {
		return firstOfMonth(ref).Format(dateLayout), ref.Format(dateLayout)
	}
	if lastMonthRe.MatchString(t) {
		lastPrev := firstOfMonth(ref).AddDate(0, 0, -1)
		return firstOfMonth(lastPrev).Format(dateLayout), lastPrev.Format(dateLayout)
	}
	if thisWeekRe.MatchString(t) {
		return mondayOf(ref).Format(dateLayout), ref.Format(dateLayout)
	}
	if lastWeekRe.MatchString(t) {
		startThis := mondayOf(ref)
		return startThis.AddDate(0, 0, -7).Format(dateLayout), startThis.AddDate(0, 0, -1).Format(dateLayout)
	}
	if m := lastDaysRe.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return ref.AddDate(0, 0, -n).Format(dateLayout), ref.Format(dateLayout)
		}
	}
	if m := explicitRe.FindStringSubmatch(t); m != nil {
		from, errFrom := time.Parse(dateLayout, m[1])
		to, errTo := time.Parse(dateLayout, m[2])
		// Fail closed: both bounds must be real dates in order, otherwise
		// the rule does not match at all.
		if errFrom == nil && errTo == nil && !from.After(to) {
			return m[1], m[2]
		}
	}
	return "", ""
}

// namedMonthWindow matches "agosto", "agosto 2024" and the like. The year
// defaults to ref's year; the window spans the full calendar month, with
// December rolling into January of the following year.
func namedMonthWindow(t string, ref time.Time) (string, string, bool) {
	for i, m := range monthNames {
		match := monthRes[i].FindStringSubmatch(t)
		if match == nil {
			continue
		}
		year := ref.Year()
		if match[1] != "" {
			if y, err := strconv.Atoi(match[1]); err == nil {
				year = y
			}
		}
		start := time.Date(year, m.month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
		return start.Format(dateLayout), end.Format(dateLayout), true
	}
	return "", "", false
}

func firstOfMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// mondayOf returns the Monday of ref's week.
func mondayOf(ref time.Time) time.Time {
	offset := (int(ref.Weekday()) + 6) % 7
	return ref.AddDate(0, 0, -offset)
}
