package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	kinds := []string{"file", "sqlite"}

	assert.True(t, Contains(kinds, "sqlite"))
	assert.False(t, Contains(kinds, "bolt"))
	assert.False(t, Contains([]string{}, "file"))
}

func TestGenerateRandomFilenameUsesExtension(t *testing.T) {
	first := GenerateRandomFilename("json")
	second := GenerateRandomFilename("json")

	assert.Contains(t, first, ".json")
	assert.NotEqual(t, first, second)
}
