package matcher

import (
	"testing"

	"github.com/grade-assist/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func roster(names ...string) []models.StudentInfo {
	students := make([]models.StudentInfo, len(names))
	for i, n := range names {
		students[i] = models.StudentInfo{ID: string(rune('a' + i)), Name: n}
	}
	return students
}

func files(names ...string) []models.FileRef {
	refs := make([]models.FileRef, len(names))
	for i, n := range names {
		refs[i] = models.FileRef{ID: string(rune('A' + i)), Name: n}
	}
	return refs
}

func TestMatchExactScenario(t *testing.T) {
	e := NewDefault()
	results, stats := e.Match(
		files("Jane_Doe_Essay.pdf"),
		roster("Jane Doe"),
	)

	assert.Len(t, results, 1)
	if assert.NotNil(t, results[0].MatchedStudent) {
		assert.Equal(t, "Jane Doe", results[0].MatchedStudent.Name)
	}
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.HighConfidence)
}

func TestMatchReorderedScenario(t *testing.T) {
	e := NewDefault()
	results, _ := e.Match(
		files("Doe, Jane - final.docx"),
		roster("Jane Doe"),
	)

	if assert.NotNil(t, results[0].MatchedStudent) {
		assert.Equal(t, "Jane Doe", results[0].MatchedStudent.Name)
	}
	assert.GreaterOrEqual(t, results[0].Confidence, 0.8)
}

func TestMatchConflictAssignsAtMostOnce(t *testing.T) {
	// Two files both closely resemble the single student: exactly one
	// wins, the other stays unmatched.
	e := NewDefault()
	results, stats := e.Match(
		files("Alex_Smith_hw1.pdf", "alex smith essay.docx"),
		roster("Alex Smith"),
	)

	matched := 0
	for _, r := range results {
		if r.MatchedStudent != nil {
			matched++
		}
	}
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)

	// The loser still reports its best score as a closest-guess.
	assert.Nil(t, results[1].MatchedStudent)
	assert.Greater(t, results[1].Confidence, 0.0)
}

func TestMatchNoStudentAssignedTwice(t *testing.T) {
	e := NewDefault()
	results, _ := e.Match(
		files("Jane_Doe.pdf", "Doe, Jane.pdf", "Alex_Smith.pdf"),
		roster("Jane Doe", "Alex Smith"),
	)

	seen := make(map[string]bool)
	for _, r := range results {
		if r.MatchedStudent == nil {
			continue
		}
		assert.False(t, seen[r.MatchedStudent.ID], "student %s assigned twice", r.MatchedStudent.ID)
		seen[r.MatchedStudent.ID] = true
	}
}

func TestMatchNoMatchScenario(t *testing.T) {
	e := NewDefault()
	results, stats := e.Match(
		files("random_upload_923.pdf"),
		roster("Jane Doe", "Alex Smith"),
	)

	assert.Nil(t, results[0].MatchedStudent)
	assert.Less(t, results[0].Confidence, DefaultParams().Floor)
	assert.Equal(t, 0, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)
}

func TestMatchEmptyRoster(t *testing.T) {
	e := NewDefault()
	results, stats := e.Match(files("a.pdf", "b.pdf"), nil)

	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Nil(t, r.MatchedStudent)
		assert.Equal(t, 0.0, r.Confidence)
	}
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Unmatched)
	assert.Equal(t, 0, stats.Matched)
}

func TestMatchEmptyFiles(t *testing.T) {
	e := NewDefault()
	results, stats := e.Match(nil, roster("Jane Doe"))

	assert.Empty(t, results)
	assert.Equal(t, models.MatchStats{}, stats)
}

func TestMatchDeterministic(t *testing.T) {
	e := NewDefault()
	fs := files("Jane_Doe.pdf", "smith.pdf", "Doe, Jane.docx", "random.txt")
	rs := roster("Jane Doe", "Alex Smith", "Jane Doe", "Maria Garcia")

	r1, s1 := e.Match(fs, rs)
	r2, s2 := e.Match(fs, rs)
	assert.Equal(t, r1, r2)
	assert.Equal(t, s1, s2)
}

func TestMatchDuplicateNamesTieBreakByRosterOrder(t *testing.T) {
	e := NewDefault()
	students := []models.StudentInfo{
		{ID: "s1", Name: "Alex Smith"},
		{ID: "s2", Name: "Alex Smith"},
	}
	results, _ := e.Match(files("Alex_Smith.pdf"), students)

	if assert.NotNil(t, results[0].MatchedStudent) {
		assert.Equal(t, "s1", results[0].MatchedStudent.ID)
	}
	// The twin shows up as the top alternate with the same score.
	if assert.NotEmpty(t, results[0].Alternates) {
		assert.Equal(t, "s2", results[0].Alternates[0].Student.ID)
		assert.Equal(t, results[0].Confidence, results[0].Alternates[0].Score)
	}
}

func TestMatchAlternatesExcludeChosenAndDescend(t *testing.T) {
	e := NewDefault()
	results, _ := e.Match(
		files("Jane_Doe.pdf"),
		roster("Jane Doe", "Jane Dow", "John Doe", "Alex Smith", "Jane Doerr"),
	)

	r := results[0]
	if assert.NotNil(t, r.MatchedStudent) {
		for _, alt := range r.Alternates {
			assert.NotEqual(t, r.MatchedStudent.ID, alt.Student.ID)
		}
	}
	assert.LessOrEqual(t, len(r.Alternates), DefaultParams().MaxAlternates)
	for i := 1; i < len(r.Alternates); i++ {
		assert.GreaterOrEqual(t, r.Alternates[i-1].Score, r.Alternates[i].Score)
	}
}

func TestMatchConfidenceAlwaysInRange(t *testing.T) {
	e := NewDefault()
	results, _ := e.Match(
		files("Jane_Doe.pdf", "", "x.y.z", "Doe, Jane - final.docx", "923.pdf"),
		roster("Jane Doe", "", "Li", "Maria del Carmen Garcia"),
	)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
	}
}

func TestMatchStatsInvariants(t *testing.T) {
	e := NewDefault()
	fs := files("Jane_Doe.pdf", "smith_essay.docx", "random_923.txt")
	rs := roster("Jane Doe", "Alex Smith")

	results, stats := e.Match(fs, rs)
	assert.Equal(t, len(fs), stats.Total)
	assert.Equal(t, len(fs), len(results))
	assert.Equal(t, stats.Total, stats.Matched+stats.Unmatched)
}

func TestStatsBuckets(t *testing.T) {
	e := NewDefault()
	student := models.StudentInfo{ID: "s1", Name: "Jane Doe"}
	results := []models.MatchResult{
		{FileID: "1", MatchedStudent: &student, Confidence: 0.95},
		{FileID: "2", MatchedStudent: &student, Confidence: 0.8},
		{FileID: "3", MatchedStudent: &student, Confidence: 0.6},
		{FileID: "4", MatchedStudent: &student, Confidence: 0.4},
		{FileID: "5", Confidence: 0.2},
	}

	stats := e.Stats(results)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 4, stats.Matched)
	assert.Equal(t, 2, stats.HighConfidence) // 0.8 cutoff is inclusive
	assert.Equal(t, 1, stats.MediumConfidence)
	assert.Equal(t, 1, stats.Unmatched)
}
