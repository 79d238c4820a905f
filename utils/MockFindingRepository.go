package utils

import (
	"fmt"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

// MockFindingRepository is an in-memory implementation of
// core.FindingRepository, used by tests.
type MockFindingRepository struct {
	Matches []core.Finding
}

// Store appends the provided findings to the repository's Matches slice.
func (m *MockFindingRepository) Store(matches []core.Finding) error {
	m.Matches = append(m.Matches, matches...)
	return nil
}

// Clear removes all findings from the repository.
func (m *MockFindingRepository) Clear() error {
	m.Matches = nil
	return nil
}

func (m *MockFindingRepository) Close() error {
	return nil
}

// NewIterator returns a new MockFindingIterator for iterating over the findings.
func (m *MockFindingRepository) NewIterator() core.FindingIterator {
	// Create copies of the findings to prevent mutation during iteration
	copiedFindings := make([]core.Finding, len(m.Matches))
	copy(copiedFindings, m.Matches)

	return &MockFindingIterator{
		position: 0,
		matches:  []core.FindingSet{{Matches: copiedFindings}},
	}
}

// MockFindingIterator is a mock implementation of core.FindingIterator
type MockFindingIterator struct {
	position int
	matches  []core.FindingSet
}

// Reset resets the iterator to the beginning.
func (m *MockFindingIterator) Reset() error {
	m.position = 0
	return nil
}

// HasNext checks if there are more findings to iterate over.
func (m *MockFindingIterator) HasNext() bool {
	return m.position < len(m.matches)
}

// Next retrieves the next set of findings.
func (m *MockFindingIterator) Next() (core.FindingSet, error) {
	if !m.HasNext() {
		return core.FindingSet{}, fmt.Errorf("no more findings")
	}
	findingSet := m.matches[m.position]
	m.position++
	return findingSet, nil
}
