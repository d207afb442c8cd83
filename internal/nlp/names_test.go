package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"con María", "María"},
		{"quiero turno con maría gonzález", "María González"},
		{"con la doctora Ana", "Ana"},
		{"con el profesional Lucas", "Lucas"},
		{"con María a las 3", "María"},
		{"Carlos", "Carlos"},
		{"Ana López", "Ana López"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.text))
		})
	}
}

func TestExtractNameNoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"quiero un turno mañana",
		"a las 15:30",
		"con el turno de hoy",
	} {
		assert.Empty(t, ExtractName(text), "text: %q", text)
	}
}

func TestMatchName(t *testing.T) {
	assert.True(t, MatchName("maría", "María González"))
	assert.True(t, MatchName("María González", "maría"))
	assert.True(t, MatchName("CARLOS", "carlos"))
	assert.False(t, MatchName("María", "Carlos"))
	assert.False(t, MatchName("", "Carlos"))
	assert.False(t, MatchName("María", ""))
}
