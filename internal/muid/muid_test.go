package muid_test

import (
	"strings"
	"testing"

	"github.com/carewise/medcrypt/internal/muid"
	"github.com/stretchr/testify/assert"
)

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := muid.New()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewShape(t *testing.T) {
	id := muid.New()
	parts := strings.SplitN(id, "-", 2)
	assert.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.Len(t, parts[1], 12)
}
