package format

import (
	"fmt"
	"strings"
	"time"
)

const InvalidDate = "Invalid date"

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano, "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date renders dd/mm/yyyy.
func Date(s string) string {
	t, ok := parse(s)
	if !ok {
		return InvalidDate
	}
	return t.Format("02/01/2006")
}

// DateLong renders "1st January 2024".
func DateLong(s string) string {
	t, ok := parse(s)
	if !ok {
		return InvalidDate
	}
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinal(t.Day()), t.Month(), t.Year())
}

// DateShort renders "Jan 2024".
func DateShort(s string) string {
	t, ok := parse(s)
	if !ok {
		return InvalidDate
	}
	return t.Format("Jan 2006")
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// RelativeTime describes how long before now the date was, in whole days,
// months (30 days) or years (365 days).
func RelativeTime(s string, now time.Time) string {
	t, ok := parse(s)
	if !ok {
		return InvalidDate
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
