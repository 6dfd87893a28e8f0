package datestr_test

import (
	"testing"

	"github.com/carewise/medcrypt/internal/datestr"
	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "1990-01-01", "1990-01-01"},
		{"padded", "  1990-01-01  ", "1990-01-01"},
		{"rfc3339", "1990-01-01T00:00:00Z", "1990-01-01"},
		{"slash format", "01/12/1990", "1990-12-01"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unparseable kept", "sometime in 1990", "sometime in 1990"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, datestr.Canonical(tt.in))
		})
	}
}

func TestYear(t *testing.T) {
	y, ok := datestr.Year("1990-01-01")
	assert.True(t, ok)
	assert.Equal(t, 1990, y)

	_, ok = datestr.Year("not a date")
	assert.False(t, ok)

	_, ok = datestr.Year("")
	assert.False(t, ok)
}
