package scanners

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/trust"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

type RepoScanner struct {
	reporter          core.Reporter
	fileScanner       FsFileScanner
	findingRepository core.FindingRepository
	trustScorer       *trust.Scorer
	Cutoff            string
	GitMetrics        utils.GitMetrics
}

func NewRepoScanner(
	reporter core.Reporter,
	processors []core.FileProcessor,
	findingRepository core.FindingRepository,
	trustScorer *trust.Scorer,
	cutoff string) *RepoScanner {
	return &RepoScanner{
		reporter:          reporter,
		fileScanner:       FsFileScanner{Processors: processors},
		findingRepository: findingRepository,
		trustScorer:       trustScorer,
		Cutoff:            cutoff,
		GitMetrics:        utils.GitMetricsClient{},
	}
}

// Scan clones the repository, collects the trust report and commit activity,
// runs every processor over the working tree, stores the findings and hands
// them to the reporter. The clone is always removed afterwards.
func (repoScanner RepoScanner) Scan(repoURL string, reportFormat string) error {
	if err := os.MkdirAll(CloneBaseDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create clone base directory '%s': %w", CloneBaseDir, err)
	}

	repoName, err := utils.ExtractRepoName(repoURL)
	if err != nil {
		return fmt.Errorf("invalid repository URL '%s': %w", repoURL, err)
	}

	// A uuid suffix keeps concurrent scans of the same repository apart.
	repoPath := filepath.Join(CloneBaseDir, fmt.Sprintf("%s_%s", utils.SanitizeRepoName(repoName), uuid.New().String()))
	defer utils.RemoveRepository(repoPath)

	log.Printf("Cloning repository: %s\n", repoName)
	if err := utils.CloneRepository(repoURL, repoPath); err != nil {
		return fmt.Errorf("failed to clone repository '%s': %w", repoName, err)
	}

	if repoScanner.trustScorer != nil {
		if report := repoScanner.trustScorer.Score(repoURL); report != nil {
			log.Printf("Trust score for '%s': %d (%s) - %s", repoName, report.Score, report.Grade, report.Details)
		}
	}

	log.Println("Collecting commit activity")
	activity, err := repoScanner.GitMetrics.CollectActivity(repoPath, repoScanner.Cutoff)
	if err != nil {
		log.Printf("Could not collect commit activity for '%s': %v", repoName, err)
	} else {
		log.WithFields(log.Fields{
			"commits":              activity.CommitCount,
			"commits_since_cutoff": activity.CommitsSinceCutoff,
			"last_commit":          activity.LastCommit,
		}).Printf("Commit activity for '%s'", repoName)
	}

	matches, err := repoScanner.fileScanner.TraverseAndSearch(repoPath, repoName)
	if err != nil {
		log.Printf("Some files could not be scanned in '%s': %v", repoName, err)
	}

	if err := repoScanner.findingRepository.Store(matches); err != nil {
		return fmt.Errorf("failed to store findings for '%s': %w", repoName, err)
	}

	log.Printf("Number of findings: %d\n", len(matches))

	if err := repoScanner.reporter.Report(repoScanner.findingRepository); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return nil
}
