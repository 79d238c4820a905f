package reporters

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite driver
	log "github.com/sirupsen/logrus"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

const (
	DefaultJsonReport        = "findings_report.json"
	DefaultJsonSummaryReport = "findings_summary.json"
)

type JsonReporter struct {
	Queries          core.SqlQueries
	ArtifactPrefix   string
	SqliteDBFilename string
	OutputDir        string
}

func (j *JsonReporter) setDefaultOutputDir() {
	if j.OutputDir == "" {
		j.OutputDir = "."
	}
}

// Report generates both detailed and summary JSON reports
func (j JsonReporter) Report(repository core.FindingRepository) error {
	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%s", j.ArtifactPrefix, j.SqliteDBFilename))

	db, err := utils.InitializeSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize SQLite database: %w", err)
	}
	defer db.Close()
	defer os.Remove(dbPath)

	if err := utils.ProcessFindingsIncrementally(db, repository); err != nil {
		return fmt.Errorf("failed to process findings: %w", err)
	}

	if err := j.generateDetailedReport(repository); err != nil {
		return fmt.Errorf("failed to generate detailed JSON report: %w", err)
	}

	if len(j.Queries.Queries) == 0 {
		log.Println("Warning: No SQL queries defined for summary report.")
		return nil
	}

	if err := j.generateSummaryReport(db); err != nil {
		return fmt.Errorf("failed to generate summary JSON report: %w", err)
	}

	return nil
}

// generateDetailedReport creates a detailed JSON report of all findings, one
// object per line.
func (j JsonReporter) generateDetailedReport(repository core.FindingRepository) error {
	j.setDefaultOutputDir()

	outputFilePath := fmt.Sprintf("%s/%s_%s", j.OutputDir, j.ArtifactPrefix, DefaultJsonReport)

	outputFile, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("failed to create detailed output file: %v", err)
	}
	defer outputFile.Close()

	iterator := repository.NewIterator()
	for iterator.HasNext() {
		set, err := iterator.Next()
		if err != nil {
			return fmt.Errorf("failed to retrieve next finding: %w", err)
		}

		for _, finding := range set.Matches {
			jsonBytes, err := json.Marshal(finding)
			if err != nil {
				return fmt.Errorf("failed to marshal finding to JSON: %w", err)
			}
			if _, err := outputFile.Write(jsonBytes); err != nil {
				return fmt.Errorf("failed to write to detailed output file: %v", err)
			}
			if _, err := outputFile.WriteString("\n"); err != nil {
				return fmt.Errorf("failed to write newline to detailed output file: %v", err)
			}
		}
	}

	fmt.Printf("Detailed JSON report generated successfully: %s\n", outputFile.Name())
	return nil
}

// generateSummaryReport executes the configured SQL queries and creates a
// summary JSON report.
func (j JsonReporter) generateSummaryReport(db *sql.DB) error {
	j.setDefaultOutputDir()

	outputFilePath := fmt.Sprintf("%s/%s_%s", j.OutputDir, j.ArtifactPrefix, DefaultJsonSummaryReport)

	outputFile, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("failed to create summary JSON output file: %v", err)
	}
	defer outputFile.Close()

	summaryData := make(map[string]interface{})

	for _, query := range j.Queries.Queries {
		results, err := executeSQLQuery(db, query.Query)
		if err != nil {
			log.Printf("Skipping query for '%s': %v", query.Name, err)
			continue
		}
		summaryData[query.Name] = results
	}

	summaryBytes, err := json.MarshalIndent(summaryData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary data: %w", err)
	}

	if _, err := outputFile.Write(summaryBytes); err != nil {
		return fmt.Errorf("failed to write to summary output file: %v", err)
	}

	fmt.Printf("Summary JSON report generated successfully: %s\n", outputFile.Name())
	return nil
}

// executeSQLQuery runs a SQL query and returns the results as a slice of maps
func executeSQLQuery(db *sql.DB, query string) ([]map[string]interface{}, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query '%s': %w", query, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve columns for query '%s': %w", query, err)
	}

	var results []map[string]interface{}

	for rows.Next() {
		columnValues := make([]interface{}, len(columns))
		columnPointers := make([]interface{}, len(columns))

		for i := range columnValues {
			columnPointers[i] = &columnValues[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row for query '%s': %w", query, err)
		}

		rowData := make(map[string]interface{})
		for i, colName := range columns {
			value := columnValues[i]

			// Convert []byte to string for text columns
			if b, ok := value.([]byte); ok {
				rowData[colName] = string(b)
			} else {
				rowData[colName] = value
			}
		}

		results = append(results, rowData)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error for query '%s': %w", query, err)
	}

	return results, nil
}
