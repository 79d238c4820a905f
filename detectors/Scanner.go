package detectors

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

const codeUnavailable = "(Code not available)"

// visitFunc inspects a single syntax node and records any findings on the
// scan. Detectors are independent: each one reacts only to the node shapes it
// knows about and ignores everything else, so one malformed construct can
// never abort the traversal.
type visitFunc func(s *scan, node *sitter.Node)

// catalogue is the fixed set of detectors applied during every traversal.
// New detectors are appended here without touching the existing ones.
var catalogue = []visitFunc{
	detectHardcodedSecret,
	detectDangerousCall,
	detectEmptyExceptHandler,
}

type scan struct {
	filename string
	source   []byte
	lines    []string
	findings []core.Finding
}

// Scan parses Python source and runs the detector catalogue in a single
// depth-first traversal of the syntax tree. It is a total function: it never
// panics and never returns an error. A source unit that cannot be parsed
// yields exactly one Error-severity finding and nothing else.
func Scan(source string, filename string) []core.Finding {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		return []core.Finding{{
			Filename: filename,
			Line:     0,
			Issue:    fmt.Sprintf("Failed to parse: %v", err),
			Severity: core.SeverityError,
			Code:     "N/A",
		}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, _ := firstSyntaxError(root)
		return []core.Finding{{
			Filename: filename,
			Line:     line,
			Issue:    "Syntax Error: invalid syntax",
			Severity: core.SeverityError,
			Code:     "N/A",
		}}
	}

	s := &scan{
		filename: filename,
		source:   []byte(source),
		lines:    strings.Split(source, "\n"),
	}
	s.walk(root)
	return s.findings
}

// walk visits every node reachable from the root exactly once, parent before
// children, applying each detector at each node.
func (s *scan) walk(node *sitter.Node) {
	for _, detect := range catalogue {
		detect(s, node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		s.walk(node.NamedChild(i))
	}
}

// addIssue records a finding anchored at the node's starting line, attaching
// the literal source line as the code snippet.
func (s *scan) addIssue(node *sitter.Node, issue string, severity string) {
	line := int(node.StartPoint().Row) + 1
	s.findings = append(s.findings, core.Finding{
		Filename: s.filename,
		Line:     line,
		Issue:    issue,
		Severity: severity,
		Code:     s.snippet(line),
	})
}

// snippet maps a 1-based line number back to the trimmed source line. Line
// numbers outside the source never fail the scan; they come back as a
// placeholder instead.
func (s *scan) snippet(line int) string {
	if line < 1 || line > len(s.lines) {
		return codeUnavailable
	}
	return strings.TrimSpace(s.lines[line-1])
}

// firstSyntaxError walks the tree for the first ERROR or missing node and
// returns its 1-based line. Tree-sitter recovers instead of raising, so this
// is the best-effort diagnostic location the parser contract asks for.
func firstSyntaxError(node *sitter.Node) (int, bool) {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1, true
	}
	if !node.HasError() {
		return 0, false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if line, ok := firstSyntaxError(node.Child(i)); ok {
			return line, true
		}
	}
	return 0, false
}
