package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"line separator", "a b", "a\nb"},
		{"paragraph separator", "a b", "a\nb"},
		{"tab", "a\tb", "a b"},
		{"control chars dropped", "a\x00\x01\x7fb", "ab"},
		{"newlines preserved", "a\nb\nc", "a\nb\nc"},
		{"plain text untouched", "Pulir anillo de oro", "Pulir anillo de oro"},
		{"accents untouched", "reparación ágil", "reparación ágil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, sanitizeText(tt.in))
		})
	}
}

func TestFormatPesos(t *testing.T) {
	tests := []struct {
		in  float64
		out string
	}{
		{0, "$ 0"},
		{999, "$ 999"},
		{1000, "$ 1.000"},
		{100000, "$ 100.000"},
		{1234567, "$ 1.234.567"},
		{1234567.49, "$ 1.234.567"},
		{1234567.5, "$ 1.234.568"},
		{-5000, "$ -5.000"},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			assert.Equal(t, tt.out, formatPesos(tt.in))
		})
	}
}
