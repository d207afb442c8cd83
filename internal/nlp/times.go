package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Time patterns are tried in order; the first match wins. All accept an
// optional am/pm suffix where grammatically sensible.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ba las?\s+(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)?\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})[:.](\d{2})\s*(am|pm)?\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})\s*()(am|pm)\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})\s*()(hs|hrs|h)\b`),
}

// ExtractTime finds a clock time in free text and normalizes it to 24-hour
// zero-padded "HH:mm". Recognized forms: "a las 15", "a las 3:30 pm",
// "14:30", "9 am", "18hs". Returns the empty string when nothing matches
// or the match is not a valid time.
func ExtractTime(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, re := range timePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch meridiem(m) {
		case "pm":
			if hour > 12 {
				continue
			}
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour > 12 {
				continue
			}
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	return ""
}

func meridiem(m []string) string {
	if len(m) < 4 {
		return ""
	}
	switch m[3] {
	case "am", "pm":
		return m[3]
	}
	return ""
}
