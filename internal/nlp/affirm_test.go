package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	for _, text := range []string{"si", "Sí", "SI", "dale", "ok", "confirmo", "perfecto", "1", "👍", "sí!"} {
		assert.True(t, IsAffirmative(text), "text: %q", text)
	}
	for _, text := range []string{"no", "no confirmo", "quiero turno", "", "simpático"} {
		assert.False(t, IsAffirmative(text), "text: %q", text)
	}
}

func TestIsNegative(t *testing.T) {
	for _, text := range []string{"no", "NO", "nop", "mejor no", "cancelar", "2", "👎"} {
		assert.True(t, IsNegative(text), "text: %q", text)
	}
	for _, text := range []string{"si", "nocturno", "", "bueno"} {
		assert.False(t, IsNegative(text), "text: %q", text)
	}
}
