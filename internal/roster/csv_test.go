package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSVCanvasExport(t *testing.T) {
	data := `Student,ID,SIS User ID,Sortable Name,Section,Email
"Doe, Jane",101,jd101,"Doe, Jane",A,jane@example.edu
Points Possible,,,,,,
Alex Smith,102,as102,"Smith, Alex",A,alex@example.edu
`
	students, errs, err := ParseCSV(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, students, 2)
	assert.Equal(t, "101", students[0].ID)
	assert.Equal(t, "Doe, Jane", students[0].Name)
	assert.Equal(t, "jane@example.edu", students[0].Email)
	assert.Equal(t, "Smith, Alex", students[1].SortableName)
}

func TestParseCSVPositionalFallback(t *testing.T) {
	data := "101,Jane Doe\n102,Alex Smith\n"
	students, errs, err := ParseCSV(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, students, 2)
	assert.Equal(t, "101", students[0].ID)
	assert.Equal(t, "Jane Doe", students[0].Name)
}

func TestParseCSVSoftErrors(t *testing.T) {
	data := `name,id
Jane Doe,101
,102
Alex Smith,
Maria Garcia,104
`
	students, errs, err := ParseCSV(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Reason, "name")
	assert.Contains(t, errs[1].Reason, "id")
}

func TestParseCSVEmpty(t *testing.T) {
	students, errs, err := ParseCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, students)
	assert.Empty(t, errs)
}

func TestStoreReplaceAndSnapshot(t *testing.T) {
	s := NewStore()

	students, _, err := ParseCSV(strings.NewReader("101,Jane Doe\n102,Alex Smith\n"))
	assert.NoError(t, err)
	s.Replace(students, "roster.csv")

	snap := s.Students()
	assert.Len(t, snap, 2)

	// Snapshot is a copy: mutating it must not touch the store
	snap[0].Name = "changed"
	assert.Equal(t, "Jane Doe", s.Students()[0].Name)

	count, source, at := s.Info()
	assert.Equal(t, 2, count)
	assert.Equal(t, "roster.csv", source)
	assert.False(t, at.IsZero())

	s.Clear()
	assert.Empty(t, s.Students())
}
