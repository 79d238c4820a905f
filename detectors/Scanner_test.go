package detectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

func TestHardcodedSecretAssignment(t *testing.T) {
	findings := Scan(`api_key = "abc123"`, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "api_key")
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, `api_key = "abc123"`, findings[0].Code)
}

func TestSecretVariantNamesAreCaseInsensitive(t *testing.T) {
	source := `
DB_PASSWORD = "hunter2"
AwsSecret = "shhh"
sessionToken = "tok"
`
	findings := Scan(source, "config.py")

	assert.Len(t, findings, 3)
	for _, finding := range findings {
		assert.Equal(t, core.SeverityHigh, finding.Severity)
	}
}

func TestNoFalseTriggerOnComputedAssignment(t *testing.T) {
	findings := Scan(`token = some_function_call()`, "app.py")
	assert.Empty(t, findings)
}

func TestNoFalseTriggerOnReferencedValue(t *testing.T) {
	findings := Scan(`password = other_password`, "app.py")
	assert.Empty(t, findings)
}

func TestNoFalseTriggerOnFString(t *testing.T) {
	findings := Scan(`api_key = f"{prefix}-123"`, "app.py")
	assert.Empty(t, findings)
}

func TestNoFalseTriggerOnUnsuspiciousName(t *testing.T) {
	findings := Scan(`greeting = "hello"`, "app.py")
	assert.Empty(t, findings)
}

func TestEvalProducesHighFinding(t *testing.T) {
	findings := Scan(`eval(user_input)`, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "eval")
}

func TestExecProducesHighFinding(t *testing.T) {
	findings := Scan(`exec(code)`, "app.py")

	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0].Issue, "exec")
}

func TestInputProducesMediumFinding(t *testing.T) {
	findings := Scan(`name = input()`, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityMedium, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "input()")
}

func TestOsSystemProducesHighFinding(t *testing.T) {
	findings := Scan(`os.system("rm -rf /")`, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "os.system")
}

func TestSubprocessPopenProducesHighFinding(t *testing.T) {
	findings := Scan(`subprocess.Popen(cmd)`, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "subprocess.Popen")
}

func TestSubprocessRunAndCall(t *testing.T) {
	findings := Scan("subprocess.run(cmd)\nsubprocess.call(cmd)", "app.py")

	assert.Len(t, findings, 2)
	assert.Contains(t, findings[0].Issue, "subprocess.run")
	assert.Contains(t, findings[1].Issue, "subprocess.call")
}

func TestAliasedModuleIsNotDetected(t *testing.T) {
	source := `
import subprocess as sp
sp.run(cmd)
`
	findings := Scan(source, "app.py")
	assert.Empty(t, findings)
}

func TestNestedAttributeBaseIsNotDetected(t *testing.T) {
	findings := Scan(`wrapper.os.system("ls")`, "app.py")
	assert.Empty(t, findings)
}

func TestEmptyExceptHandler(t *testing.T) {
	source := `
try:
    risky()
except Exception:
    pass
`
	findings := Scan(source, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityLow, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "empty except")
	assert.Equal(t, "except Exception:", findings[0].Code)
}

func TestEllipsisExceptHandler(t *testing.T) {
	source := `
try:
    risky()
except ValueError:
    ...
`
	findings := Scan(source, "app.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityLow, findings[0].Severity)
}

func TestHandlerThatLogsIsNotFlagged(t *testing.T) {
	source := `
try:
    risky()
except Exception:
    log.error("failed")
    pass
`
	findings := Scan(source, "app.py")
	assert.Empty(t, findings)
}

func TestParseFailureSingleton(t *testing.T) {
	findings := Scan("def broken(:\n", "bad.py")

	assert.Len(t, findings, 1)
	assert.Equal(t, core.SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Issue, "Syntax Error")
	assert.Equal(t, "N/A", findings[0].Code)
}

func TestNestedConstructsAreVisited(t *testing.T) {
	source := `
class Service:
    def setup(self):
        self.x = 1
        password = "letmein"
`
	findings := Scan(source, "service.py")

	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0].Issue, "password")
	assert.Equal(t, 5, findings[0].Line)
}

func TestDocumentOrderIsPreserved(t *testing.T) {
	source := `x = 1
api_key = "abc123"
y = 2
z = 3
eval(data)
`
	findings := Scan(source, "ordered.py")

	assert.Len(t, findings, 2)
	assert.Contains(t, findings[0].Issue, "api_key")
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[1].Issue, "eval")
	assert.Equal(t, 5, findings[1].Line)
}

func TestDeterminism(t *testing.T) {
	source := `
api_key = "abc123"
os.system("ls")
try:
    pass
except:
    pass
`
	first := Scan(source, "repeat.py")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Scan(source, "repeat.py"))
	}
}

func TestLineNumbersAreWithinSource(t *testing.T) {
	source := `import os

secret = "abc"
os.system("ls")
eval(x)
try:
    f()
except:
    pass
`
	lineCount := len(strings.Split(source, "\n"))
	findings := Scan(source, "lines.py")

	assert.NotEmpty(t, findings)
	for _, finding := range findings {
		assert.Greater(t, finding.Line, 0)
		assert.LessOrEqual(t, finding.Line, lineCount)
		assert.Equal(t, strings.TrimSpace(strings.Split(source, "\n")[finding.Line-1]), finding.Code)
	}
}

func TestEmptySourceProducesNoFindings(t *testing.T) {
	assert.Empty(t, Scan("", "empty.py"))
}

func TestSnippetPlaceholderForOutOfRangeLine(t *testing.T) {
	s := &scan{lines: []string{"one", "two"}}
	assert.Equal(t, codeUnavailable, s.snippet(3))
	assert.Equal(t, codeUnavailable, s.snippet(0))
	assert.Equal(t, "two", s.snippet(2))
}
