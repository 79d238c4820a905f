package scanners

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

const (
	MaxWorkers     = 10
	MaxFileWorkers = 10
	CloneBaseDir   = "/tmp/gitsec-scanner" // You can make this configurable if needed
)

type FileScanner interface {
	TraverseAndSearch(repoPath, repoName string) ([]core.Finding, error)
}

type FsFileScanner struct {
	Processors []core.FileProcessor
	Excludes   []glob.Glob
}

// NewFsFileScanner compiles the exclude glob patterns up front; a pattern
// that fails to compile is logged and skipped rather than failing the scan.
func NewFsFileScanner(processors []core.FileProcessor, excludePatterns []string) FsFileScanner {
	var excludes []glob.Glob
	for _, pattern := range excludePatterns {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			log.Printf("Ignoring invalid exclude pattern '%s': %v", pattern, err)
			continue
		}
		excludes = append(excludes, compiled)
	}
	return FsFileScanner{Processors: processors, Excludes: excludes}
}

func (fileScanner FsFileScanner) TraverseAndSearch(targetDir string, repoName string) ([]core.Finding, error) {
	var Matches []core.Finding
	var mu sync.Mutex

	info, err := os.Stat(targetDir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("target directory '%s' does not exist", targetDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", targetDir)
	}

	files := make(chan string, 100)
	fileMatches := make(chan core.Finding, 1000)

	// Errors are collected in a slice rather than a bounded channel so a
	// worker can never block on reporting one, however many files fail.
	var errMu sync.Mutex
	var scanErrs []error
	recordErr := func(err error) {
		errMu.Lock()
		scanErrs = append(scanErrs, err)
		errMu.Unlock()
	}

	var wg sync.WaitGroup

	// File processing workers
	for i := 0; i < MaxFileWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range files {
				for _, processor := range fileScanner.Processors {
					if processor.Supports(path) {
						content, err := os.ReadFile(path)
						if err != nil {
							recordErr(fmt.Errorf("failed to read file %s: %v", path, err))
							continue
						}
						relPath := path
						if rel, err := filepath.Rel(targetDir, path); err == nil {
							relPath = rel
						}
						results, _ := processor.Process(relPath, repoName, string(content))
						for _, Match := range results {
							fileMatches <- Match
						}
					}
				}
			}
		}()
	}

	// Walk through directory and send files to the Worker channel
	go func() {
		_ = filepath.WalkDir(targetDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				recordErr(err)
				return nil
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if fileScanner.excluded(targetDir, path) {
				return nil
			}
			files <- path
			return nil
		})
		close(files)
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(fileMatches)
	}()

	for match := range fileMatches {
		mu.Lock()
		Matches = append(Matches, match)
		mu.Unlock()
	}

	if len(scanErrs) > 0 {
		return Matches, fmt.Errorf("%d errors occurred during scanning, first: %v", len(scanErrs), scanErrs[0])
	}

	return Matches, nil
}

// excluded filters out vendored paths and anything hit by an exclude glob.
func (fileScanner FsFileScanner) excluded(targetDir, path string) bool {
	rel, err := filepath.Rel(targetDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if enry.IsVendor(rel) {
		return true
	}
	for _, pattern := range fileScanner.Excludes {
		if pattern.Match(rel) {
			return true
		}
	}
	return strings.HasPrefix(rel, ".git/")
}
