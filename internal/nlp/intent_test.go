package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantType   IntentType
		wantConf   float64
	}{
		{"book keyword", "quiero turno mañana a las 3pm", IntentBook, 0.8},
		{"book reservar", "Reservar para el viernes", IntentBook, 0.8},
		{"cancel", "necesito cancelar mi turno", IntentCancel, 0.9},
		{"cancel phrase", "no voy a poder ir", IntentCancel, 0.9},
		{"view phrase", "qué turnos tengo?", IntentView, 0.9},
		{"view mi turno", "ver mi turno", IntentView, 0.9},
		{"reschedule", "quiero reprogramar", IntentReschedule, 0.85},
		{"reschedule phrase", "puedo cambiar el turno?", IntentReschedule, 0.85},
		{"greeting", "hola!", IntentGreeting, 0.7},
		{"greeting buenas", "buenas tardes", IntentGreeting, 0.7},
		{"help", "AYUDA", IntentHelp, 0.95},
		{"help question mark", "?", IntentHelp, 0.95},
		{"help menu", "menú", IntentHelp, 0.95},
		{"help over cancel", "ayuda para cancelar", IntentHelp, 0.95},
		{"cancel over book", "cancelar el turno", IntentCancel, 0.9},
		{"unknown", "asdf qwerty", IntentUnknown, 0},
		{"empty", "   ", IntentUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectIntent(tt.text)
			assert.Equal(t, tt.wantType, got.Type)
			assert.InDelta(t, tt.wantConf, got.Confidence, 0.001)
		})
	}
}

func TestIntentIsClear(t *testing.T) {
	assert.True(t, Intent{Type: IntentGreeting, Confidence: 0.7}.IsClear())
	assert.True(t, Intent{Type: IntentHelp, Confidence: 0.95}.IsClear())
	assert.False(t, Intent{Type: IntentUnknown, Confidence: 0}.IsClear())
	assert.False(t, Intent{Type: IntentBook, Confidence: 0.5}.IsClear())
}
