package nlp

import (
	"regexp"
	"strings"
)

// namePatterns pick a person name out of phrases like "con María",
// "con la doctora Ana López" or a bare capitalized word.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcon\s+(?:el\s+|la\s+)?(?:doctor[a]?\s+|dr[a]?\.?\s+|profesional\s+|emplead[oa]\s+)?([a-záéíóúñ]+(?:\s+[a-záéíóúñ]+)?)`),
	regexp.MustCompile(`^([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)?)$`),
}

// nameStopwords are words that follow a name in the same sentence and must
// not be mistaken for a surname ("con María a las 3").
var nameStopwords = map[string]bool{
	"a": true, "y": true, "o": true, "el": true, "la": true, "las": true,
	"los": true, "de": true, "del": true, "en": true, "para": true,
	"por": true, "que": true, "hoy": true, "mañana": true, "lunes": true,
	"martes": true, "miercoles": true, "miércoles": true, "jueves": true,
	"viernes": true, "sabado": true, "sábado": true, "domingo": true,
	"turno": true, "cita": true, "hora": true, "horario": true,
}

// ExtractName pulls a likely person name from free text. Empty string
// means no name was found.
func ExtractName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if m := namePatterns[0].FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	if m := namePatterns[1].FindStringSubmatch(text); m != nil {
		return titleCase(m[1])
	}
	return ""
}

// MatchName reports whether text refers to candidate: an exact
// case-insensitive match, or either string containing the other. "María"
// matches "María González" and the other way around.
func MatchName(text, candidate string) bool {
	a := strings.ToLower(strings.TrimSpace(text))
	b := strings.ToLower(strings.TrimSpace(candidate))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(b, a) || strings.Contains(a, b)
}

// cleanName drops trailing sentence words the pattern over-captured and
// rejects captures that were nothing but stopwords.
func cleanName(raw string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(raw)) {
		if nameStopwords[w] {
			break
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	return titleCase(strings.Join(kept, " "))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
