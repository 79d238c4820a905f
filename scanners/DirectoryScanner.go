package scanners

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

// DirectoryScanner scans every top-level directory of a local path.
type DirectoryScanner struct {
	reporter          core.Reporter
	fileScanner       FsFileScanner
	findingRepository core.FindingRepository
	progress          utils.ProgressReporter
}

// NewDirectoryScanner creates a new DirectoryScanner
func NewDirectoryScanner(reporter core.Reporter,
	processors []core.FileProcessor,
	findingRepository core.FindingRepository) *DirectoryScanner {
	return &DirectoryScanner{
		reporter:          reporter,
		fileScanner:       FsFileScanner{Processors: processors},
		findingRepository: findingRepository,
		progress:          utils.NewBarProgressReporter(0, "Scanning directories"),
	}
}

// Scan method for DirectoryScanner
func (ds *DirectoryScanner) Scan(directory string, reportFormat string) error {
	dirs, err := listTopLevelDirectories(directory)
	if err != nil {
		return fmt.Errorf("failed to list directories in '%s': %w", directory, err)
	}

	if len(dirs) == 0 {
		log.Println("No top-level directories found to Scan.")
		return nil
	}

	ds.progress.SetTotal(len(dirs))

	for _, dir := range dirs {
		matches, err := ds.fileScanner.TraverseAndSearch(dir, filepath.Base(dir))
		if err != nil {
			log.Printf("Error searching directory '%s': %v", dir, err)
			ds.progress.Increment()
			continue // Proceed with the next directory
		}

		log.Printf("Number of findings in '%s': %d\n", dir, len(matches))
		if err := ds.findingRepository.Store(matches); err != nil {
			return fmt.Errorf("failed to store findings for '%s': %w", dir, err)
		}
		ds.progress.Increment()
	}

	if err := ds.reporter.Report(ds.findingRepository); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	fmt.Println("Report generation completed successfully.")
	return nil
}

// Helper function to list top-level directories in a given path
func listTopLevelDirectories(path string) ([]string, error) {
	var directories []string

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			directories = append(directories, filepath.Join(path, entry.Name()))
		}
	}

	return directories, nil
}
