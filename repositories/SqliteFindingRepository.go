package repositories

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

// SqliteFindingRepository implements core.FindingRepository using SQLite
type SqliteFindingRepository struct {
	db *sql.DB
}

// NewSqliteFindingRepository creates a new SQLite-backed repository.
// dbPath is the filename/path for your SQLite database (e.g. "findings.db").
func NewSqliteFindingRepository(dbPath string) (core.FindingRepository, error) {
	db, err := utils.InitializeSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}

	return &SqliteFindingRepository{db: db}, nil
}

// Store saves one batch of findings inside a single transaction.
func (r *SqliteFindingRepository) Store(matches []core.Finding) error {
	return utils.InsertFindings(r.db, matches)
}

func (r *SqliteFindingRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM Findings")
	return err
}

// NewIterator streams the stored findings back out in insertion order, one
// batch per page.
func (r *SqliteFindingRepository) NewIterator() core.FindingIterator {
	return &SqliteFindingIterator{repo: r}
}

// Close closes the underlying SQLite database.
func (r *SqliteFindingRepository) Close() error {
	return r.db.Close()
}

const iteratorPageSize = 500

// SqliteFindingIterator pages through the Findings table.
type SqliteFindingIterator struct {
	repo       *SqliteFindingRepository
	lastID     int
	currentSet core.FindingSet
}

func (it *SqliteFindingIterator) HasNext() bool {
	rows, err := it.repo.db.Query(
		`SELECT id, Filename, Line, Issue, Severity, Code, RepoName
		 FROM Findings WHERE id > ? ORDER BY id LIMIT ?`, it.lastID, iteratorPageSize)
	if err != nil {
		return false
	}
	defer rows.Close()

	var matches []core.Finding
	for rows.Next() {
		var id int
		var finding core.Finding
		if err := rows.Scan(&id, &finding.Filename, &finding.Line, &finding.Issue, &finding.Severity, &finding.Code, &finding.RepoName); err != nil {
			continue
		}
		it.lastID = id
		matches = append(matches, finding)
	}

	if len(matches) == 0 {
		it.currentSet = core.FindingSet{}
		return false
	}
	it.currentSet = core.FindingSet{Matches: matches}
	return true
}

func (it *SqliteFindingIterator) Next() (core.FindingSet, error) {
	return it.currentSet, nil
}

func (it *SqliteFindingIterator) Reset() error {
	it.lastID = 0
	it.currentSet = core.FindingSet{}
	return nil
}
