package detectors

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

// secretHints are matched case-insensitively as substrings of assignment
// target names.
var secretHints = []string{"key", "password", "secret", "token"}

// detectHardcodedSecret flags assignments of string literals to identifiers
// that look like credentials, e.g. api_key = "sk-...". Computed values,
// referenced variables and call results are deliberately not flagged.
func detectHardcodedSecret(s *scan, node *sitter.Node) {
	if node.Type() != "assignment" {
		return
	}
	// x: str = "..." is an annotated assignment, a different statement class.
	if node.ChildByFieldName("type") != nil {
		return
	}
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return
	}

	name := left.Content(s.source)
	lower := strings.ToLower(name)
	suspicious := false
	for _, hint := range secretHints {
		if strings.Contains(lower, hint) {
			suspicious = true
			break
		}
	}
	if !suspicious || !isPlainString(right) {
		return
	}

	s.addIssue(node, fmt.Sprintf("Possible Hardcoded Secret: '%s'", name), core.SeverityHigh)
}

// isPlainString reports whether the node is a string literal without
// interpolation. f-strings are computed values, not hardcoded ones.
func isPlainString(node *sitter.Node) bool {
	if node.Type() != "string" {
		return false
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "interpolation" {
			return false
		}
	}
	return true
}

// detectDangerousCall flags dynamic code execution (eval/exec), unvalidated
// interactive input, and shell-spawning calls through the os and subprocess
// modules. Only the literal module.method call shape is recognized; aliased
// imports and indirect references are out of scope.
func detectDangerousCall(s *scan, node *sitter.Node) {
	if node.Type() != "call" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Type() {
	case "identifier":
		switch name := fn.Content(s.source); name {
		case "eval", "exec":
			s.addIssue(node, fmt.Sprintf("Use of Dangerous Function (%s)", name), core.SeverityHigh)
		case "input":
			s.addIssue(node, "Use of input() (Validate this data!)", core.SeverityMedium)
		}
	case "attribute":
		object := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if object == nil || attr == nil || object.Type() != "identifier" {
			return
		}
		module := object.Content(s.source)
		method := attr.Content(s.source)
		switch {
		case module == "os" && (method == "system" || method == "popen"):
			s.addIssue(node, fmt.Sprintf("Potential OS Command Injection: %s.%s", module, method), core.SeverityHigh)
		case module == "subprocess" && (method == "run" || method == "call" || method == "Popen"):
			s.addIssue(node, fmt.Sprintf("Potential Subprocess Injection: %s.%s", module, method), core.SeverityHigh)
		}
	}
}

// detectEmptyExceptHandler flags exception handlers whose body is exactly one
// no-op statement (pass or a bare ellipsis). Handlers that do anything else
// first, even just logging, are left alone.
func detectEmptyExceptHandler(s *scan, node *sitter.Node) {
	if node.Type() != "except_clause" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "block" {
			body = child
		}
	}
	if body == nil || body.NamedChildCount() != 1 {
		return
	}

	stmt := body.NamedChild(0)
	if stmt.Type() == "pass_statement" || isEllipsisStatement(stmt) {
		s.addIssue(node, "Broad Exception Handler (empty except)", core.SeverityLow)
	}
}

func isEllipsisStatement(stmt *sitter.Node) bool {
	return stmt.Type() == "expression_statement" &&
		stmt.NamedChildCount() == 1 &&
		stmt.NamedChild(0).Type() == "ellipsis"
}
