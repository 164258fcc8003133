package copilot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
)

// Period is one calendar month. A nil *Period means all time.
type Period struct {
	Year  int
	Month time.Month
}

// Label renders the period the way answers and responses show it,
// e.g. "May 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
}

// Contains reports whether the date falls inside the period's month.
func (p Period) Contains(d core.Date) bool {
	return d.Year() == p.Year && d.Month() == int(p.Month)
}

var monthTerms = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var wordPattern = regexp.MustCompile(`[a-z]+`)

// parsePeriod extracts a month facet from the question. "this month" and
// "last month" resolve against now; a bare month name resolves to its most
// recent occurrence that is not in the future. No match means all time.
func parsePeriod(question string, now time.Time) *Period {
	q := strings.ToLower(question)

	if strings.Contains(q, "this month") {
		return &Period{Year: now.Year(), Month: now.Month()}
	}
	if strings.Contains(q, "last month") {
		year, month := now.Year(), now.Month()
		if month == time.January {
			return &Period{Year: year - 1, Month: time.December}
		}
		return &Period{Year: year, Month: month - 1}
	}

	for _, word := range wordPattern.FindAllString(q, -1) {
		month, ok := monthTerms[word]
		if !ok {
			continue
		}
		year := now.Year()
		if month > now.Month() {
			year--
		}
		return &Period{Year: year, Month: month}
	}
	return nil
}
