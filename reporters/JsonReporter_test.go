package reporters

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

func TestJsonReporterWritesDetailedAndSummaryReports(t *testing.T) {
	outputDir := t.TempDir()

	repository := &utils.MockFindingRepository{}
	assert.Nil(t, repository.Store([]core.Finding{
		{Filename: "app.py", Line: 1, Issue: "Possible Hardcoded Secret: 'api_key'", Severity: core.SeverityHigh, Code: `api_key = "abc123"`, RepoName: "some-repo"},
		{Filename: "run.py", Line: 3, Issue: "Potential OS Command Injection: os.system", Severity: core.SeverityHigh, Code: `os.system(cmd)`, RepoName: "some-repo"},
		{Filename: "legacy.py", Line: 9, Issue: "Broad Exception Handler (empty except)", Severity: core.SeverityLow, Code: "except:", RepoName: "some-repo"},
	}))

	reporter := JsonReporter{
		Queries: core.SqlQueries{Queries: []core.SqlQuery{
			{Name: "findings_by_severity", Query: "SELECT Severity, COUNT(*) AS total FROM Findings GROUP BY Severity ORDER BY total DESC"},
		}},
		ArtifactPrefix:   "test",
		SqliteDBFilename: "findings.db",
		OutputDir:        outputDir,
	}

	assert.Nil(t, reporter.Report(repository))

	detailedPath := filepath.Join(outputDir, fmt.Sprintf("test_%s", DefaultJsonReport))
	detailed, err := os.Open(detailedPath)
	assert.Nil(t, err)
	defer detailed.Close()

	var lines int
	scanner := bufio.NewScanner(detailed)
	for scanner.Scan() {
		var finding core.Finding
		assert.Nil(t, json.Unmarshal(scanner.Bytes(), &finding))
		lines++
	}
	assert.Equal(t, 3, lines)

	summaryPath := filepath.Join(outputDir, fmt.Sprintf("test_%s", DefaultJsonSummaryReport))
	summaryBytes, err := os.ReadFile(summaryPath)
	assert.Nil(t, err)

	var summary map[string][]map[string]interface{}
	assert.Nil(t, json.Unmarshal(summaryBytes, &summary))
	assert.Contains(t, summary, "findings_by_severity")
	assert.Len(t, summary["findings_by_severity"], 2)
}
