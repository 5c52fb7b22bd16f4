package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ana@example.com", "Ana"},
		{"ana.lopez@example.com", "Ana Lopez"},
		{"jo_van-dam+test@example.com", "Jo Van Dam Test"},
		{"noat", "Noat"},
		{"", "User"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveNameFromEmail(tt.email), tt.email)
	}
}
