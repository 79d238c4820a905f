package repositories

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

func TestSqliteRepositoryRoundTripsFindings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "findings.db")

	repository, err := NewSqliteFindingRepository(dbPath)
	assert.Nil(t, err)
	defer repository.Close()

	first := []core.Finding{
		{Filename: "a.py", Line: 2, Issue: "Use of Dangerous Function (eval)", Severity: core.SeverityHigh, Code: "eval(x)", RepoName: "some-repo"},
	}
	second := []core.Finding{
		{Filename: "b.py", Line: 5, Issue: "Broad Exception Handler (empty except)", Severity: core.SeverityLow, Code: "except:", RepoName: "some-repo"},
	}
	assert.Nil(t, repository.Store(first))
	assert.Nil(t, repository.Store(second))

	iterator := repository.NewIterator()
	var collected []core.Finding
	for iterator.HasNext() {
		set, err := iterator.Next()
		assert.Nil(t, err)
		collected = append(collected, set.Matches...)
	}

	assert.Len(t, collected, 2)
	assert.Equal(t, first[0], collected[0])
	assert.Equal(t, second[0], collected[1])

	assert.Nil(t, iterator.Reset())
	assert.True(t, iterator.HasNext())
}

func TestSqliteRepositoryClearEmptiesTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "findings.db")

	repository, err := NewSqliteFindingRepository(dbPath)
	assert.Nil(t, err)
	defer repository.Close()

	assert.Nil(t, repository.Store([]core.Finding{{Filename: "app.py", Severity: core.SeverityHigh}}))
	assert.Nil(t, repository.Clear())

	iterator := repository.NewIterator()
	assert.False(t, iterator.HasNext())
}
