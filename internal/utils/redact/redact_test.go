package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	masked := Email("john@example.com")
	assert.NotContains(t, masked, "john")
	assert.Contains(t, masked, "[EMAIL:")
	assert.Equal(t, masked, Email("john@example.com"), "hash must be stable")
	assert.NotEqual(t, masked, Email("jane@example.com"))
	assert.Empty(t, Email(""))
}

func TestSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short", "abcd1234", "[REDACTED]"},
		{"long", "0123456789abcdef", "****cdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Secret(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	input := "login from 10.0.0.7 by ops@example.com failed with key 3f9a8c7e6d5b4a39281706f5e4d3c2b1a0"
	result := Text(input)

	assert.NotContains(t, result, "10.0.0.7")
	assert.NotContains(t, result, "ops@example.com")
	assert.NotContains(t, result, "3f9a8c7e6d5b4a39281706f5e4d3c2b1a0")
	assert.Contains(t, result, "[IP:")
	assert.Contains(t, result, "****b1a0")
	assert.Contains(t, result, "login from")
}
