package scanners_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/processors"
	"github.com/CorruptResonant/gitsec-scanner/scanners"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.Nil(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.Nil(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTraverseAndSearchFindsIssuesInTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "api_key = \"abc123\"\n")
	writeFile(t, dir, "nested/runner.py", "import os\nos.system(\"ls\")\n")
	writeFile(t, dir, "README.md", "# not python\n")

	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)

	findings, err := scanner.TraverseAndSearch(dir, "some-repo")

	assert.Nil(t, err)
	assert.Len(t, findings, 2)
	for _, finding := range findings {
		assert.Equal(t, "some-repo", finding.RepoName)
	}
}

func TestTraverseAndSearchReportsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/settings.py", "password = \"hunter2\"\n")

	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)

	findings, err := scanner.TraverseAndSearch(dir, "some-repo")

	assert.Nil(t, err)
	assert.Len(t, findings, 1)
	assert.Equal(t, filepath.Join("pkg", "settings.py"), findings[0].Filename)
}

func TestTraverseAndSearchSkipsExcludedPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "api_key = \"abc123\"\n")
	writeFile(t, dir, "generated/schema.py", "api_key = \"abc123\"\n")

	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), []string{"generated/**"})

	findings, err := scanner.TraverseAndSearch(dir, "some-repo")

	assert.Nil(t, err)
	assert.Len(t, findings, 1)
	assert.Equal(t, "app.py", findings[0].Filename)
}

func TestTraverseAndSearchUnparsableFileDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.py", "def broken(:\n")
	writeFile(t, dir, "good.py", "eval(x)\n")

	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)

	findings, err := scanner.TraverseAndSearch(dir, "some-repo")

	assert.Nil(t, err)
	assert.Len(t, findings, 2)

	severities := map[string]int{}
	for _, finding := range findings {
		severities[finding.Severity]++
	}
	assert.Equal(t, 1, severities[core.SeverityError])
	assert.Equal(t, 1, severities[core.SeverityHigh])
}

func TestTraverseAndSearchManyUnreadableFilesStillReturns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.py", "eval(x)\n")
	for i := 0; i < 12; i++ {
		target := filepath.Join(dir, "missing")
		link := filepath.Join(dir, fmt.Sprintf("f%d.py", i))
		assert.Nil(t, os.Symlink(target, link))
	}

	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)

	done := make(chan struct{})
	var findings []core.Finding
	var err error
	go func() {
		findings, err = scanner.TraverseAndSearch(dir, "some-repo")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("TraverseAndSearch did not return with many unreadable files")
	}

	assert.NotNil(t, err)
	assert.Len(t, findings, 1)
}

func TestTraverseAndSearchMissingDirectory(t *testing.T) {
	scanner := scanners.NewFsFileScanner(processors.InitializeProcessors(), nil)

	_, err := scanner.TraverseAndSearch("/does/not/exist", "some-repo")
	assert.NotNil(t, err)
}
