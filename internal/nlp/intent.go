package nlp

import (
	"regexp"
	"strings"
)

// IntentType is the coarse classification of what the user wants.
type IntentType string

const (
	IntentBook       IntentType = "book"
	IntentCancel     IntentType = "cancel"
	IntentView       IntentType = "view"
	IntentReschedule IntentType = "reschedule"
	IntentGreeting   IntentType = "greeting"
	IntentHelp       IntentType = "help"
	IntentUnknown    IntentType = "unknown"
)

// Intent is the per-message classification result. It is transient; nothing
// stores it beyond the current turn.
type Intent struct {
	Type       IntentType
	Confidence float64
}

// ClearConfidence is the single knob deciding whether the orchestrator
// routes straight to a handler or falls back to the menu.
const ClearConfidence = 0.7

type intentRule struct {
	intent     IntentType
	confidence float64
	words      []*regexp.Regexp
	phrases    []string
}

// intentRules are evaluated in order; the first matching set wins. Help is
// checked first so "ayuda para cancelar" still reaches the menu, and cancel
// before book so "cancelar el turno" never starts a booking.
var intentRules = []intentRule{
	{
		intent:     IntentHelp,
		confidence: 0.95,
		words:      wordSet(`ayuda`, `help`, `opciones`, `menu`, `comandos`),
		phrases:    []string{"menú", "que puedo hacer", "qué puedo hacer"},
	},
	{
		intent:     IntentCancel,
		confidence: 0.9,
		words:      wordSet(`cancelar`, `cancelo`, `cancela`, `anular`, `anulo`, `suspender`),
		phrases:    []string{"dar de baja", "no puedo ir", "no voy a poder"},
	},
	{
		intent:     IntentReschedule,
		confidence: 0.85,
		words:      wordSet(`reprogramar`, `reagendar`, `posponer`),
		phrases:    []string{"cambiar el turno", "cambiar mi turno", "mover el turno", "mover mi turno", "cambiar la cita"},
	},
	{
		intent:     IntentView,
		confidence: 0.9,
		words:      wordSet(`consultar`),
		phrases: []string{
			"mis turnos", "mi turno", "ver turno", "ver mis", "que turnos tengo",
			"qué turnos tengo", "cuando tengo", "cuándo tengo", "mi cita", "mis citas",
			"proximo turno", "próximo turno",
		},
	},
	{
		intent:     IntentBook,
		confidence: 0.8,
		words:      wordSet(`turno`, `reservar`, `reserva`, `agendar`, `cita`, `appointment`),
		phrases:    []string{"sacar turno", "pedir hora", "quiero ir", "necesito un horario"},
	},
	{
		intent:     IntentGreeting,
		confidence: 0.7,
		words:      wordSet(`hola`, `buenas`, `hey`, `hello`, `hi`),
		phrases:    []string{"buen dia", "buen día", "buenos dias", "buenos días", "buenas tardes", "buenas noches"},
	},
}

func wordSet(words ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`(?i)\b`+w+`\b`))
	}
	return res
}

// DetectIntent classifies a free-text message. No match yields
// IntentUnknown with confidence 0.
func DetectIntent(text string) Intent {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Intent{Type: IntentUnknown, Confidence: 0}
	}
	if text == "?" {
		return Intent{Type: IntentHelp, Confidence: 0.95}
	}

	for _, rule := range intentRules {
		for _, re := range rule.words {
			if re.MatchString(text) {
				return Intent{Type: rule.intent, Confidence: rule.confidence}
			}
		}
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				return Intent{Type: rule.intent, Confidence: rule.confidence}
			}
		}
	}
	return Intent{Type: IntentUnknown, Confidence: 0}
}

// IsClear reports whether the intent is confident enough to route directly
// to a dialogue handler.
func (i Intent) IsClear() bool {
	return i.Confidence >= ClearConfidence
}
