package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

type FileBasedFindingRepository struct {
	path  string
	files []string
}

func (r *FileBasedFindingRepository) Close() error {
	return nil
}

func NewFileBasedFindingRepository() core.FindingRepository {
	return &FileBasedFindingRepository{
		path:  os.TempDir(),
		files: make([]string, 0),
	}
}

func (r *FileBasedFindingRepository) Store(matches []core.Finding) error {
	jsonData, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return err
	}

	filePath := path.Join(r.path, utils.GenerateRandomFilename("json"))
	r.files = append(r.files, filePath)
	err = os.WriteFile(filePath, jsonData, 0644)
	if err != nil {
		return err
	}
	return nil
}

func (r *FileBasedFindingRepository) Clear() error {
	for _, filepath := range r.files {
		err := os.Remove(filepath)
		if err != nil {
			return err
		}
	}
	r.files = nil
	return nil
}

// NewIterator creates a new FileBasedFindingIterator for the Repository
func (r *FileBasedFindingRepository) NewIterator() core.FindingIterator {
	return &FileBasedFindingIterator{
		Repository:  r,
		currentFile: 0,
		matchSet:    core.FindingSet{Matches: nil},
	}
}

// FileBasedFindingIterator implements the Iterator pattern for Finding instances
type FileBasedFindingIterator struct {
	Repository  *FileBasedFindingRepository
	currentFile int
	matchSet    core.FindingSet
}

// HasNext checks if there are more Finding instances to iterate over
func (it *FileBasedFindingIterator) HasNext() bool {
	// Attempt to load the next file until a file with matchSet is found or all files are exhausted
	for it.currentFile < len(it.Repository.files) {
		err := it.loadNextFile()
		if err != nil {
			log.Printf("Error loading file %s: %v", it.Repository.files[it.currentFile], err)
			it.currentFile++
			continue
		}
		return true
	}
	return false
}

// Next retrieves the next Finding instance
func (it *FileBasedFindingIterator) Next() (core.FindingSet, error) {
	if it.matchSet.Matches == nil {
		return core.FindingSet{}, fmt.Errorf("no more matchSet available")
	}
	return it.matchSet, nil
}

func (it *FileBasedFindingIterator) Reset() error {
	it.currentFile = 0
	it.matchSet = core.FindingSet{}
	return nil
}

// loadNextFile loads matchSet from the next file
func (it *FileBasedFindingIterator) loadNextFile() error {
	if it.currentFile >= len(it.Repository.files) {
		return fmt.Errorf("no more files to load")
	}

	filePath := it.Repository.files[it.currentFile]
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	var matches []core.Finding
	err = json.Unmarshal(data, &matches)
	if err != nil {
		return fmt.Errorf("failed to parse JSON in file %s: %w", filePath, err)
	}

	it.matchSet = core.FindingSet{Matches: matches}
	it.currentFile++

	return nil
}
