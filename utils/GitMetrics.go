package utils

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/markusmobius/go-dateparser"
)

// ActivityStats summarizes commit activity in a cloned repository.
type ActivityStats struct {
	CommitCount        int       `json:"commit_count"`
	CommitsSinceCutoff int       `json:"commits_since_cutoff"`
	LastCommit         time.Time `json:"last_commit"`
}

// GitMetrics defines the behavior for collecting Git metrics.
type GitMetrics interface {
	CollectActivity(repoPath, cutoffDate string) (ActivityStats, error)
}

// GitMetricsClient is the default implementation of GitMetrics.
type GitMetricsClient struct{}

// CollectActivity walks the commit log of the repository at repoPath. The
// cutoff date accepts anything go-dateparser understands ("3 months ago",
// "2025-01-01", ...); an empty cutoff counts every commit.
func (g GitMetricsClient) CollectActivity(repoPath, cutoffDate string) (ActivityStats, error) {
	var stats ActivityStats

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open git repository: %w", err)
	}

	cutoffTimestamp, err := parseCutoffDate(cutoffDate)
	if err != nil {
		return stats, fmt.Errorf("failed to parse cutoff date: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return stats, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commitIter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return stats, fmt.Errorf("failed to read commit log: %w", err)
	}

	err = commitIter.ForEach(func(commit *object.Commit) error {
		stats.CommitCount++
		if commit.Author.When.After(stats.LastCommit) {
			stats.LastCommit = commit.Author.When
		}
		if cutoffTimestamp == -1 || commit.Author.When.Unix() >= cutoffTimestamp {
			stats.CommitsSinceCutoff++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return stats, nil
}

// parseCutoffDate parses the cutoff date string into a Unix timestamp.
// If the dateStr is empty, it returns -1 to indicate no cutoff.
func parseCutoffDate(dateStr string) (int64, error) {
	if dateStr == "" {
		return -1, nil
	}

	parsedTime, err := dateparser.Parse(nil, dateStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse date string '%s': %w", dateStr, err)
	}

	return parsedTime.Time.Unix(), nil
}
