package processors

import (
	"github.com/CorruptResonant/gitsec-scanner/core"
)

// InitializeProcessors creates and returns a slice of FileProcessor implementations.
func InitializeProcessors() []core.FileProcessor {
	var processors []core.FileProcessor

	processors = append(processors, PythonSecurityProcessor{})

	return processors
}
