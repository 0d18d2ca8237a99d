package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Sara Ali", CleanString("  Sara Ali\t"))
	assert.Equal(t, "kg1", CleanString(" KG1 ", true))
	assert.Equal(t, "", CleanString("   "))
}

func TestCleanDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456789012", "123456789012"},
		{"1234 5678 9012", "123456789012"},
		{"1234-5678-9012", "123456789012"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanDigits(tt.in), tt.in)
	}
}
