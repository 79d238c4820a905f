package repositories

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

func TestStoreWritesFindingsToFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "prefix")
	if err != nil {
		assert.Nil(t, err)
	}
	defer os.RemoveAll(dir)

	repository := FileBasedFindingRepository{
		path: dir,
	}

	err = repository.Store([]core.Finding{
		{Filename: "app.py", Line: 1, Issue: "Possible Hardcoded Secret: 'api_key'", Severity: core.SeverityHigh, Code: `api_key = "abc123"`},
	})
	assert.Nil(t, err)
	count, err := utils.CountFiles(dir)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)
}

func TestClearRemovesAllFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "prefix")
	if err != nil {
		assert.Nil(t, err)
	}
	defer os.RemoveAll(dir)

	repository := FileBasedFindingRepository{
		path: dir,
	}

	err = repository.Store([]core.Finding{{Filename: "app.py"}})
	assert.Nil(t, err)
	err = repository.Clear()
	assert.Nil(t, err)
	count, err := utils.CountFiles(dir)
	assert.Nil(t, err)
	assert.Equal(t, 0, count)
}

func TestIteratorRoundTripsBatches(t *testing.T) {
	dir, err := os.MkdirTemp("", "prefix")
	if err != nil {
		assert.Nil(t, err)
	}
	defer os.RemoveAll(dir)

	repository := FileBasedFindingRepository{
		path: dir,
	}

	first := []core.Finding{
		{Filename: "a.py", Line: 2, Issue: "Use of Dangerous Function (eval)", Severity: core.SeverityHigh, Code: "eval(x)"},
	}
	second := []core.Finding{
		{Filename: "b.py", Line: 5, Issue: "Broad Exception Handler (empty except)", Severity: core.SeverityLow, Code: "except:"},
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
