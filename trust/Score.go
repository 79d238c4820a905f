package trust

import (
	"fmt"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/utils"
)

// Report is the heuristic trust assessment of a repository, derived purely
// from its public metadata.
type Report struct {
	Score   int    `json:"score"`
	Grade   string `json:"grade"`
	Details string `json:"details"`
}

// Scorer computes trust reports from GitHub repository metadata. A nil cache
// disables caching.
type Scorer struct {
	api   utils.GithubApi
	cache *Cache
	now   func() time.Time
}

func NewScorer(api utils.GithubApi, cache *Cache) *Scorer {
	return &Scorer{
		api:   api,
		cache: cache,
		now:   time.Now,
	}
}

// Score grades a github.com repository URL. It never fails: problems reaching
// the API come back as a zero score with an Unknown grade. A URL that cannot
// even be split into owner/repo yields nil, matching the caller-facing
// contract of "no trust data".
func (s *Scorer) Score(repoURL string) *Report {
	owner, repo, err := utils.ExtractOwnerAndRepo(repoURL)
	if err != nil {
		return nil
	}

	slug := fmt.Sprintf("%s/%s", owner, repo)
	if s.cache != nil {
		if report, ok := s.cache.Get(slug); ok {
			return report
		}
	}

	repository, resp, err := s.api.GetRepository(owner, repo)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		log.Printf("Trust score lookup failed for '%s': %v", slug, err)
		return &Report{
			Score:   0,
			Grade:   "Unknown",
			Details: fmt.Sprintf("GitHub Error %d: %s", status, http.StatusText(status)),
		}
	}

	ageYears := s.now().Sub(repository.GetCreatedAt().Time).Hours() / 24 / 365
	ageScore := math.Min(30, ageYears*10)

	stars := repository.GetStargazersCount()
	forks := repository.GetForksCount()
	popScore := math.Min(40, float64(stars)*0.5+float64(forks)*1)

	activityScore := 0
	if repository.GetHasIssues() {
		activityScore += 15
	}
	if repository.GetHasPages() {
		activityScore += 15
	}

	report := &Report{
		Score:   int(ageScore+popScore) + activityScore,
		Details: fmt.Sprintf("Repo is %.1f years old with %d stars.", ageYears, stars),
	}
	report.Grade = gradeFor(report.Score)

	if s.cache != nil {
		if err := s.cache.Put(slug, report); err != nil {
			log.Printf("Failed to cache trust report for '%s': %v", slug, err)
		}
	}

	return report
}

func gradeFor(score int) string {
	switch {
	case score >= 80:
		return "A (Trusted)"
	case score >= 60:
		return "B (Reliable)"
	case score >= 40:
		return "C (Caution)"
	default:
		return "D (High Risk)"
	}
}
