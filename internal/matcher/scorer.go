package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Engine scores filename/student pairs and resolves assignments. An Engine
// is immutable after construction and safe for concurrent use.
type Engine struct {
	params Params
}

// New creates an Engine with the given parameters.
func New(params Params) *Engine {
	return &Engine{params: params}
}

// NewDefault creates an Engine with DefaultParams.
func NewDefault() *Engine {
	return New(DefaultParams())
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Score computes a similarity score in [0,1] between a normalized filename
// and a normalized student name.
func (e *Engine) Score(file, student Normalized) float64 {
	if file.Full == "" || student.Full == "" {
		return 0
	}

	// Exact full-name match: the student's complete name appears as a
	// contiguous token phrase in the filename ("Jane_Doe_Essay" contains
	// "jane doe"). Token-boundary matching keeps short names from
	// matching inside unrelated words.
	if containsPhrase(file.Tokens, student.Tokens) {
		return 1.0
	}

	overlap := tokenOverlap(student.Tokens, file.Tokens)
	ratio := similarityRatio(file.Full, student.Full)

	w := e.params.TokenWeight + e.params.StringWeight
	score := (e.params.TokenWeight*overlap + e.params.StringWeight*ratio) / w
	return clamp01(score)
}

// containsPhrase reports whether needle appears as a contiguous sub-sequence
// of haystack.
func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, t := range needle {
			if haystack[i+j] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// tokenOverlap is the fraction of student name tokens found in the filename
// token set, verbatim or within a one-edit budget for longer tokens.
// Token order is irrelevant.
func tokenOverlap(student, file []string) float64 {
	if len(student) == 0 {
		return 0
	}
	hits := 0
	for _, st := range student {
		for _, ft := range file {
			if tokensMatch(st, ft) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(student))
}

// tokensMatch allows one edit of slack on tokens long enough that a single
// typo doesn't flip them into a different name.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

// minSharedRatio is the floor for strings that share at least one
// character: only fully disjoint strings score an exact zero.
const minSharedRatio = 0.01

// similarityRatio is a character-level edit-distance ratio between the
// normalized full strings: 1 for identical, approaching 0 as the strings
// diverge. It rewards concatenated names, nicknames, and misspellings that
// token matching misses.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1 - float64(dist)/float64(longest)
	if ratio <= 0 {
		if sharesRune(a, b) {
			return minSharedRatio
		}
		return 0
	}
	return clamp01(ratio)
}

// sharesRune reports whether the two strings have any letter or digit in
// common. Token separators don't count.
func sharesRune(a, b string) bool {
	seen := make(map[rune]struct{}, len(a))
	for _, r := range a {
		if r != ' ' {
			seen[r] = struct{}{}
		}
	}
	for _, r := range b {
		if _, ok := seen[r]; ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// studentName picks the string to normalize for a roster entry, falling back
// to the sortable "Last, First" form when the display name is blank.
func studentName(name, sortable string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return sortable
}
