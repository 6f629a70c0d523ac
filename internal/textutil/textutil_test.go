package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims and collapses", "  Cinta   di\tUjung  Senja \n", "Cinta di Ujung Senja"},
		{"composes accents", "Cafe\u0301 Noir", "Caf\u00e9 Noir"},
		{"drops zero width", "Re\u200bborn", "Reborn"},
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.in))
		})
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "", Description("  "))
	assert.Equal(t, "Plain synopsis.", Description(" Plain synopsis. "))

	got := Description("<p>She returns <b>stronger</b>.</p><p>Revenge begins.</p>")
	assert.Contains(t, got, "**stronger**")
	assert.Contains(t, got, "Revenge begins.")
	assert.NotContains(t, got, "<p>")
}

func TestDescription_CollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", Description("a\r\n\r\n\r\n\r\nb"))
}
