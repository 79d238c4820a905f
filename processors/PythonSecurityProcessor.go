package processors

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/detectors"
)

// PythonSecurityProcessor runs the security detector catalogue over Python
// source files.
type PythonSecurityProcessor struct {
}

func (p PythonSecurityProcessor) Supports(filePath string) bool {
	// Only a literal .git path segment is skipped; .github/ and friends are
	// regular directories that can hold scannable scripts.
	for _, segment := range strings.Split(filepath.ToSlash(filePath), "/") {
		if segment == ".git" {
			return false
		}
	}
	return filepath.Ext(filePath) == ".py"
}

func (p PythonSecurityProcessor) Process(path string, repoName string, content string) ([]core.Finding, error) {
	// A .py extension is not proof of Python; skip misnamed files instead of
	// reporting bogus syntax errors for them.
	if language := enry.GetLanguage(path, []byte(content)); language != "" && language != "Python" {
		return nil, nil
	}

	findings := detectors.Scan(content, path)
	for i := range findings {
		findings[i].RepoName = repoName
	}
	return findings, nil
}
