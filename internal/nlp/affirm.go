package nlp

import "strings"

var affirmatives = map[string]bool{
	"si": true, "sí": true, "sip": true, "sii": true, "dale": true,
	"ok": true, "okay": true, "oka": true, "bueno": true, "claro": true,
	"confirmo": true, "confirmar": true, "correcto": true, "exacto": true,
	"perfecto": true, "genial": true, "obvio": true, "por supuesto": true,
	"de acuerdo": true, "esta bien": true, "está bien": true, "va": true,
	"yes": true, "1": true, "👍": true, "✅": true,
}

var negatives = map[string]bool{
	"no": true, "nop": true, "nope": true, "negativo": true,
	"cancelar": true, "cancela": true, "mejor no": true, "no gracias": true,
	"para nada": true, "nunca": true, "2": true, "👎": true, "❌": true,
}

// IsAffirmative reports whether text is a yes. Matching is exact against
// the normalized message, not substring: "no confirmo" is not a yes.
func IsAffirmative(text string) bool {
	return affirmatives[normalizeAnswer(text)]
}

// IsNegative reports whether text is a no.
func IsNegative(text string) bool {
	return negatives[normalizeAnswer(text)]
}

func normalizeAnswer(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.TrimRight(text, ".!")
}
