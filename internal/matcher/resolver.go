package matcher

import (
	"sort"

	"github.com/grade-assist/backend/internal/models"
)

// candidate is one (file, student, score) triple in the dense score matrix.
type candidate struct {
	fileIdx    int
	studentIdx int
	score      float64
}

// Match resolves a batch of uploaded files against a roster. It returns one
// MatchResult per input file, in input order, plus aggregate statistics.
//
// Assignment is greedy by global score: all (file, student) pairs are sorted
// score-descending (ties broken by file input order, then student input
// order, for determinism) and walked once, assigning a pair only when
// neither side is taken and the score clears the floor. This is chosen over
// optimal bipartite matching because it is deterministic, explainable to a
// grader, and adequate at roster sizes of a few hundred.
func (e *Engine) Match(files []models.FileRef, students []models.StudentInfo) ([]models.MatchResult, models.MatchStats) {
	normFiles := make([]Normalized, len(files))
	for i, f := range files {
		normFiles[i] = Normalize(f.Name)
	}
	normStudents := make([]Normalized, len(students))
	for i, s := range students {
		normStudents[i] = Normalize(studentName(s.Name, s.SortableName))
	}

	// Dense score matrix as a flat candidate list.
	cands := make([]candidate, 0, len(files)*len(students))
	for fi := range files {
		for si := range students {
			cands = append(cands, candidate{
				fileIdx:    fi,
				studentIdx: si,
				score:      e.Score(normFiles[fi], normStudents[si]),
			})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].fileIdx != cands[j].fileIdx {
			return cands[i].fileIdx < cands[j].fileIdx
		}
		return cands[i].studentIdx < cands[j].studentIdx
	})

	assignedStudent := make([]int, len(files)) // file -> student idx, -1 if none
	for i := range assignedStudent {
		assignedStudent[i] = -1
	}
	studentTaken := make([]bool, len(students))
	assignedScore := make([]float64, len(files))

	for _, c := range cands {
		if c.score < e.params.Floor {
			break // sorted descending; nothing below the floor is assignable
		}
		if assignedStudent[c.fileIdx] != -1 || studentTaken[c.studentIdx] {
			continue
		}
		assignedStudent[c.fileIdx] = c.studentIdx
		studentTaken[c.studentIdx] = true
		assignedScore[c.fileIdx] = c.score
	}

	// Best score per file, even below the floor, so unmatched files still
	// surface a "closest guess" confidence.
	bestScore := make([]float64, len(files))
	for _, c := range cands {
		if c.score > bestScore[c.fileIdx] {
			bestScore[c.fileIdx] = c.score
		}
	}

	results := make([]models.MatchResult, len(files))
	for fi, f := range files {
		res := models.MatchResult{
			FileID:   f.ID,
			FileName: f.Name,
		}
		si := assignedStudent[fi]
		if si >= 0 {
			chosen := students[si]
			res.MatchedStudent = &chosen
			res.Confidence = assignedScore[fi]
		} else {
			res.Confidence = bestScore[fi]
		}
		res.Alternates = e.alternatesFor(fi, si, cands, students)
		results[fi] = res
	}

	return results, e.Stats(results)
}

// alternatesFor collects the next-best scoring students for a file,
// excluding the chosen one, ordered descending by score.
func (e *Engine) alternatesFor(fileIdx, chosenStudent int, cands []candidate, students []models.StudentInfo) []models.AlternateMatch {
	if e.params.MaxAlternates == 0 {
		return nil
	}
	var alts []models.AlternateMatch
	for _, c := range cands { // already sorted score-descending
		if c.fileIdx != fileIdx || c.studentIdx == chosenStudent || c.score == 0 {
			continue
		}
		alts = append(alts, models.AlternateMatch{
			Student: students[c.studentIdx],
			Score:   c.score,
		})
		if len(alts) == e.params.MaxAlternates {
			break
		}
	}
	return alts
}
