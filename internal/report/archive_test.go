package report

import (
	"testing"

	"github.com/grade-assist/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func testRun(id string) (*models.MatchRun, []models.MatchResult) {
	student := models.StudentInfo{ID: "s1", Name: "Jane Doe"}
	run := models.NewMatchRun(id, []string{"f1", "f2"})
	run.Status = models.RunStatusComplete
	run.StartedAt = 1700000000000
	run.ProcessingTimeMs = 12
	run.Stats = &models.MatchStats{
		Total: 2, Matched: 1, HighConfidence: 1, Unmatched: 1,
	}
	results := []models.MatchResult{
		{FileID: "f1", FileName: "Jane_Doe.pdf", MatchedStudent: &student, Confidence: 1.0},
		{FileID: "f2", FileName: "random.pdf", Confidence: 0.1},
	}
	return run, results
}

func TestSaveAndGetRun(t *testing.T) {
	archive, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer archive.Close()

	run, results := testRun("run-1")
	assert.NoError(t, archive.SaveRun(run, results))

	summary, matches, ok, err := archive.GetRun("run-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, int64(12), summary.ProcessingTimeMs)

	assert.Len(t, matches, 2)
	// Ordered by confidence descending
	assert.Equal(t, "f1", matches[0].FileID)
	assert.True(t, matches[0].Matched)
	assert.Equal(t, "Jane Doe", matches[0].StudentName)
	assert.False(t, matches[1].Matched)
	assert.Empty(t, matches[1].StudentID)
}

func TestGetRunMissing(t *testing.T) {
	archive, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer archive.Close()

	_, _, ok, err := archive.GetRun("nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentRunsOrdered(t *testing.T) {
	archive, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer archive.Close()

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run, results := testRun(id)
		run.StartedAt = int64(1700000000000 + i*1000)
		assert.NoError(t, archive.SaveRun(run, results))
	}

	recent, err := archive.RecentRuns(2)
	assert.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "run-c", recent[0].RunID)
	assert.Equal(t, "run-b", recent[1].RunID)
}

func TestSaveRunWithoutStats(t *testing.T) {
	archive, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer archive.Close()

	run := models.NewMatchRun("run-x", nil)
	assert.Error(t, archive.SaveRun(run, nil))
}
