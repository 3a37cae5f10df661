// Package roster handles ingestion and in-memory storage of the class
// roster the matching engine resolves against.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/grade-assist/backend/internal/models"
)

// ParseError records a roster row that could not be ingested. Row problems
// are soft: the rest of the roster still loads.
type ParseError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// header column aliases, lower-cased. Canvas gradebook exports use
// "Student" / "ID" / "SIS User ID"; generic exports use "name" / "id".
var (
	nameColumns     = []string{"student", "name", "student name", "full name"}
	idColumns       = []string{"id", "student id", "sis user id"}
	sortableColumns = []string{"sortable name", "sortable_name"}
	emailColumns    = []string{"email", "email address"}
)

// ParseCSV reads a roster CSV. It detects a header row by column names and
// falls back to positional "id,name" rows when no header is recognized.
// Canvas's "Points Possible" filler row is skipped. Rows missing a name or
// an id are reported as soft errors, not failures.
func ParseCSV(r io.Reader) ([]models.StudentInfo, []ParseError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rosters in the wild have ragged rows
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading roster CSV: %w", err)
	}
	if len(records) == 0 {
		return []models.StudentInfo{}, nil, nil
	}

	nameIdx, idIdx, sortIdx, emailIdx, hasHeader := detectHeader(records[0])

	start := 0
	if hasHeader {
		start = 1
	} else {
		// Positional fallback: id,name
		idIdx, nameIdx, sortIdx, emailIdx = 0, 1, -1, -1
	}

	students := make([]models.StudentInfo, 0, len(records))
	var errors []ParseError

	for i := start; i < len(records); i++ {
		row := records[i]
		line := i + 1

		name := field(row, nameIdx)
		if strings.EqualFold(name, "points possible") {
			continue // Canvas filler row
		}
		if name == "" {
			errors = append(errors, ParseError{Line: line, Reason: "missing student name"})
			continue
		}

		id := field(row, idIdx)
		if id == "" {
			errors = append(errors, ParseError{Line: line, Reason: "missing student id"})
			continue
		}

		students = append(students, models.StudentInfo{
			ID:           id,
			Name:         name,
			SortableName: field(row, sortIdx),
			Email:        field(row, emailIdx),
		})
	}

	return students, errors, nil
}

// detectHeader maps recognized column names to indexes. A row counts as a
// header when both a name column and an id column are found.
func detectHeader(row []string) (nameIdx, idIdx, sortIdx, emailIdx int, ok bool) {
	nameIdx, idIdx, sortIdx, emailIdx = -1, -1, -1, -1
	for i, col := range row {
		c := strings.ToLower(strings.TrimSpace(col))
		switch {
		case nameIdx == -1 && contains(nameColumns, c):
			nameIdx = i
		case idIdx == -1 && contains(idColumns, c):
			idIdx = i
		case sortIdx == -1 && contains(sortableColumns, c):
			sortIdx = i
		case emailIdx == -1 && contains(emailColumns, c):
			emailIdx = i
		}
	}
	return nameIdx, idIdx, sortIdx, emailIdx, nameIdx != -1 && idIdx != -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
