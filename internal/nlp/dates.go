package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
}

var monthNames = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// ordinalWords maps word-form day ordinals ("tercero de marzo") to numbers.
var ordinalWords = map[string]int{
	"primero": 1, "primer": 1, "uno": 1,
	"segundo": 2, "dos": 2,
	"tercero": 3, "tercer": 3, "tres": 3,
	"cuarto": 4, "cuatro": 4,
	"quinto": 5, "cinco": 5,
	"sexto": 6, "seis": 6,
	"septimo": 7, "séptimo": 7, "siete": 7,
	"octavo": 8, "ocho": 8,
	"noveno": 9, "nueve": 9,
	"decimo": 10, "décimo": 10, "diez": 10,
}

var (
	todayRE    = regexp.MustCompile(`(?i)\bhoy\b`)
	tomorrowRE = regexp.MustCompile(`(?i)mañana`)
	// "por la mañana" / "a la mañana" / "de la mañana" mean morning, not tomorrow.
	morningRE = regexp.MustCompile(`(?i)(por|a|de)\s+la\s+mañana`)

	weekdayRE  = regexp.MustCompile(`(?i)(?:\b(?:el|este|pr[oó]ximo)\s+)?\b(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\b`)
	monthDayRE = regexp.MustCompile(`(?i)\b([a-záéíóúñ]+|\d{1,2})\s+de\s+([a-záéíóúñ]+)(?:\s+(?:de[l]?\s+)?(\d{4}))?\b`)
	numericRE  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
)

// ExtractDate finds a calendar date in free text. It recognizes, in order:
// hoy/mañana, weekday names (next future occurrence, never today), "3 de
// marzo [de 2026]" including word ordinals up to "décimo", and DD/MM/YYYY
// or DD/MM/YY. Returns nil when no date is present. The result is midnight
// in now's location.
func ExtractDate(text string, now time.Time) *time.Time {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	today := midnight(now)

	if todayRE.MatchString(text) {
		return &today
	}
	if tomorrowRE.MatchString(text) && !morningRE.MatchString(text) {
		d := today.AddDate(0, 0, 1)
		return &d
	}

	if m := weekdayRE.FindStringSubmatch(text); m != nil {
		if wd, ok := weekdayNames[normalizeDay(m[1])]; ok {
			d := NextWeekday(today, wd)
			return &d
		}
	}

	for _, m := range monthDayRE.FindAllStringSubmatch(text, -1) {
		if d := resolveMonthDay(m[1], m[2], m[3], today); d != nil {
			return d
		}
	}

	if m := numericRE.FindStringSubmatch(text); m != nil {
		if d := resolveNumeric(m[1], m[2], m[3], now.Location()); d != nil {
			return d
		}
	}

	return nil
}

// NextWeekday returns the next occurrence of w strictly after from's date.
// When from already falls on w the result rolls a full week forward;
// same-day is never selected.
func NextWeekday(from time.Time, w time.Weekday) time.Time {
	from = midnight(from)
	days := (int(w) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

func resolveMonthDay(dayStr, monthStr, yearStr string, today time.Time) *time.Time {
	month, ok := monthNames[monthStr]
	if !ok {
		return nil
	}

	var day int
	if n, err := strconv.Atoi(dayStr); err == nil {
		day = n
	} else if n, ok := ordinalWords[dayStr]; ok {
		day = n
	} else {
		return nil
	}
	if day < 1 || day > 31 {
		return nil
	}

	year := today.Year()
	explicitYear := yearStr != ""
	if explicitYear {
		year, _ = strconv.Atoi(yearStr)
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	if d.Day() != day || d.Month() != month {
		return nil
	}
	// Without an explicit year, a date already past this year means the
	// next occurrence.
	if !explicitYear && d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return &d
}

func resolveNumeric(dayStr, monthStr, yearStr string, loc *time.Location) *time.Time {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Day() != day || int(d.Month()) != month {
		return nil
	}
	return &d
}

func normalizeDay(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDate renders a date the way users type it back: DD/MM/YYYY.
// ExtractDate on the output returns the same calendar day.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
