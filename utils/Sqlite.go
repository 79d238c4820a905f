package utils

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CorruptResonant/gitsec-scanner/core"
)

// InitializeSQLiteDB opens (or creates) the SQLite DB, applies the findings
// schema, and turns on performance PRAGMAs for faster bulk inserts.
func InitializeSQLiteDB(dbPath string) (*sql.DB, error) {

	DeleteDatabaseFileIfExists(dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One-shot bulk load; losing the last transactions on a crash is fine
	// for a report artifact.
	_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	_, _ = db.Exec("PRAGMA synchronous = OFF;")

	createStmt := `CREATE TABLE IF NOT EXISTS Findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		Filename TEXT,
		Line INTEGER,
		Issue TEXT,
		Severity TEXT,
		Code TEXT,
		RepoName TEXT
	);`

	if _, err := db.Exec(createStmt); err != nil {
		return nil, fmt.Errorf("failed to create findings table: %w", err)
	}

	return db, nil
}

// InsertFindings writes a batch of findings inside a single transaction.
func InsertFindings(db *sql.DB, findings []core.Finding) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`INSERT INTO Findings (Filename, Line, Issue, Severity, Code, RepoName)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, finding := range findings {
		if _, err = stmt.Exec(finding.Filename, finding.Line, finding.Issue, finding.Severity, finding.Code, finding.RepoName); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ProcessFindingsIncrementally streams every batch held by the repository
// into the database.
func ProcessFindingsIncrementally(db *sql.DB, repository core.FindingRepository) error {
	iterator := repository.NewIterator()
	for iterator.HasNext() {
		set, err := iterator.Next()
		if err != nil {
			return fmt.Errorf("failed to retrieve next finding set: %w", err)
		}
		if err := InsertFindings(db, set.Matches); err != nil {
			return err
		}
	}
	return nil
}
