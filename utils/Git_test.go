package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRepoName(t *testing.T) {
	name, err := ExtractRepoName("https://github.com/acme/widgets.git")
	assert.Nil(t, err)
	assert.Equal(t, "widgets", name)

	name, err = ExtractRepoName("git@github.com:acme/widgets.git")
	assert.Nil(t, err)
	assert.Equal(t, "acme/widgets", name)

	_, err = ExtractRepoName("not-a-url")
	assert.NotNil(t, err)
}

func TestExtractOwnerAndRepo(t *testing.T) {
	owner, repo, err := ExtractOwnerAndRepo("https://github.com/acme/widgets")
	assert.Nil(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", repo)

	owner, repo, err = ExtractOwnerAndRepo("https://github.com/acme/widgets.git/")
	assert.Nil(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", repo)
}

func TestSanitizeRepoName(t *testing.T) {
	assert.Equal(t, "acme_widgets", SanitizeRepoName("acme/widgets"))
}
