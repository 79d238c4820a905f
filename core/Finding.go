package core

// Severity levels for findings. Error is reserved for parse and decode
// failures, not for security issues.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
	SeverityError  = "Error"
)

// Finding is one detected issue in a scanned source unit. Findings are
// created once by a detector and never mutated afterwards.
type Finding struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	RepoName string `json:"repo_name,omitempty"`
}
