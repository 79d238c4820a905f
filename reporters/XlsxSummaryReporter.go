package reporters

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

const XlsxSummaryReport = "summary_report.xlsx"
const xlsxSQLiteDB = "findings.db"

type XlsxSummaryReporter struct{}

// Report stages the findings into a scratch SQLite database and writes a
// workbook with the raw findings plus severity and per-file summaries.
func (xr XlsxSummaryReporter) Report(repository core.FindingRepository) error {
	fmt.Println("Generating Summary XLSX file")

	dbPath := filepath.Join(os.TempDir(), xlsxSQLiteDB)
	db, err := utils.InitializeSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create SQLite database: %w", err)
	}
	defer db.Close()
	defer os.Remove(dbPath)

	if err := utils.ProcessFindingsIncrementally(db, repository); err != nil {
		return fmt.Errorf("failed to import findings into SQLite: %w", err)
	}

	// A slice rather than a map keeps worksheet order stable across runs.
	queries := []struct {
		sheet string
		query string
	}{
		{"Findings", `
			SELECT
				Filename,
				Line,
				Issue,
				Severity,
				Code,
				RepoName
			FROM
				Findings
			ORDER BY
				id;
		`},
		{"Findings By Severity", `
			SELECT
				Severity,
				COUNT(*) AS Total
			FROM
				Findings
			GROUP BY
				Severity
			ORDER BY
				Total DESC;
		`},
		{"Files With Most Findings", `
			SELECT
				Filename,
				COUNT(*) AS Total
			FROM
				Findings
			WHERE
				Severity != 'Error'
			GROUP BY
				Filename
			ORDER BY
				Total DESC;
		`},
		{"Findings By Issue", `
			SELECT
				Issue,
				COUNT(*) AS Total
			FROM
				Findings
			GROUP BY
				Issue
			ORDER BY
				Total DESC;
		`},
	}

	excelFile := excelize.NewFile()
	defaultSheet := excelFile.GetSheetName(0)

	for _, q := range queries {
		if err := xr.executeAndWriteQuery(db, excelFile, q.query, q.sheet); err != nil {
			return fmt.Errorf("failed to write query result for '%s': %w", q.sheet, err)
		}
	}

	if err := excelFile.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to delete default sheet %q: %w", defaultSheet, err)
	}

	if err := excelFile.SaveAs(XlsxSummaryReport); err != nil {
		return fmt.Errorf("failed to save summary report: %w", err)
	}

	fmt.Printf("Summary XLSX report generated successfully: %s\n", XlsxSummaryReport)
	return nil
}

func (xr XlsxSummaryReporter) executeAndWriteQuery(db *sql.DB, excelFile *excelize.File, query, sheetName string) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to retrieve columns: %w", err)
	}

	if _, err := excelFile.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := excelFile.SetCellValue(sheetName, cell, column); err != nil {
			return err
		}
	}

	rowIndex := 2
	for rows.Next() {
		columnValues := make([]interface{}, len(columns))
		columnPointers := make([]interface{}, len(columns))
		for i := range columnValues {
			columnPointers[i] = &columnValues[i]
		}
		if err := rows.Scan(columnPointers...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		for i, value := range columnValues {
			cell, err := excelize.CoordinatesToCellName(i+1, rowIndex)
			if err != nil {
				return err
			}
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			if err := excelFile.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
		rowIndex++
	}

	return rows.Err()
}
