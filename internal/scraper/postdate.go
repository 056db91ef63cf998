package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// postAgePattern matches the numeric relative ages the site renders, in
// English, French and German. The optional plus covers capped ages like
// "30+ days ago".
var postAgePattern = regexp.MustCompile(`(\d+)\+?\s*(minute|stunde|heure|hour|jour|day|tag|woche|week|semaine|monat|month|mois)`)

// parsePostDate turns a listing's relative posting age into an absolute
// time against the given clock.
func parsePostDate(value string, now time.Time) (time.Time, error) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrDateFormat)
	}

	switch {
	case strings.Contains(cleaned, "just posted"),
		strings.Contains(cleaned, "today"),
		strings.Contains(cleaned, "aujourd'hui"),
		strings.Contains(cleaned, "l'instant"),
		cleaned == "heute":
		return now, nil
	case strings.Contains(cleaned, "yesterday"),
		cleaned == "hier",
		cleaned == "gestern":
		return now.AddDate(0, 0, -1), nil
	}

	match := postAgePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, value)
	}
	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, value)
	}

	switch match[2] {
	case "minute":
		return now.Add(-time.Duration(amount) * time.Minute), nil
	case "stunde", "heure", "hour":
		return now.Add(-time.Duration(amount) * time.Hour), nil
	case "jour", "day", "tag":
		return now.AddDate(0, 0, -amount), nil
	case "woche", "week", "semaine":
		return now.AddDate(0, 0, -7*amount), nil
	case "monat", "month", "mois":
		return now.AddDate(0, -amount, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, value)
}
