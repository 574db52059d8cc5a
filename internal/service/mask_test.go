package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskBookerName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"korean three chars", "홍길동", "홍**"},
		{"korean two chars", "이안", "이*"},
		{"single char", "김", "김"},
		{"empty", "", ""},
		{"latin name", "Alice", "A****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskBookerName(tt.input))
		})
	}
}

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard mobile", "010-1234-5678", "010-****-5678"},
		{"short middle", "02-123-4567", "02-***-4567"},
		{"no delimiters", "01012345678", "01012345678"},
		{"two segments", "010-5678", "010-5678"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhoneNumber(tt.input))
		})
	}
}
