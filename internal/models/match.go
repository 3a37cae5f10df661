package models

// FileRef identifies one uploaded submission artifact by its raw filename.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentInfo is one roster entry. SortableName carries the "Last, First"
// form that Canvas exports alongside the display name.
type StudentInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SortableName string `json:"sortableName,omitempty"`
	Email        string `json:"email,omitempty"`
}

// AlternateMatch is a next-best candidate student, offered so the UI can
// support manual override of the chosen match.
type AlternateMatch struct {
	Student StudentInfo `json:"student"`
	Score   float64     `json:"score"`
}

// MatchResult is the engine's verdict for a single file.
// MatchedStudent is nil when the file could not be assigned; Confidence then
// holds the best score the file had against any student.
type MatchResult struct {
	FileID         string           `json:"fileId"`
	FileName       string           `json:"fileName"`
	MatchedStudent *StudentInfo     `json:"matchedStudent"`
	Confidence     float64          `json:"confidence"`
	Alternates     []AlternateMatch `json:"alternates,omitempty"`
}

// MatchStats aggregates one matching run.
type MatchStats struct {
	Total            int `json:"total"`
	Matched          int `json:"matched"`
	HighConfidence   int `json:"highConfidence"`
	MediumConfidence int `json:"mediumConfidence"`
	Unmatched        int `json:"unmatched"`
}
