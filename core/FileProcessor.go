package core

// FileProcessor is an interface that defines a generic per-file processor.
type FileProcessor interface {
	Supports(filePath string) bool

	Process(path string, repoName string, content string) ([]Finding, error)
}
