// Package matcher implements the file-to-student reconciliation engine:
// filename/name normalization, fuzzy candidate scoring, conflict-free greedy
// assignment, and confidence statistics. The engine is pure and holds no
// state between calls.
package matcher

import (
	"strings"
	"unicode"
)

// Normalized is the comparable canonical form of a raw name or filename.
type Normalized struct {
	Full   string   // canonical "first last" string, lower-cased
	Tokens []string // name tokens in the order they appear in Full
}

// knownExtensions covers the document formats submission systems hand us.
// Stripping only known extensions avoids eating dotted name parts
// ("st.clair" is a name, "essay.pdf" is not).
var knownExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "odt": {}, "rtf": {}, "txt": {},
	"pages": {}, "gdoc": {}, "gslides": {}, "ppt": {}, "pptx": {},
	"key": {}, "md": {}, "zip": {}, "html": {},
}

// platformTokens are markers upload systems append to filenames that carry
// no identity signal. Canvas appends "_LATE" and numeric submission IDs.
var platformTokens = map[string]struct{}{
	"late": {}, "submission": {}, "upload": {}, "copy": {}, "final": {},
	"draft": {}, "resubmission": {},
}

// Normalize canonicalizes a raw student name or filename into a comparable
// token representation. It is deterministic and never fails: inputs it does
// not understand degrade to a best-effort token set.
func Normalize(raw string) Normalized {
	s := strings.TrimSpace(raw)
	s = stripExtension(s)

	// "Last, First" ordering: swap around the first comma so that
	// "Doe, Jane" and "Jane Doe" compare equal after tokenization.
	if i := strings.Index(s, ","); i > 0 && i < len(s)-1 {
		s = strings.TrimSpace(s[i+1:]) + " " + strings.TrimSpace(s[:i])
	}

	// Lower-case and replace punctuation and separators with spaces.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if isPlatformToken(f) {
			continue
		}
		tokens = append(tokens, f)
	}

	// Drop short tokens (initials, stray characters) unless nothing else
	// survived; a single-character name is better than an empty one.
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) >= 2 {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}

	return Normalized{
		Full:   strings.Join(kept, " "),
		Tokens: kept,
	}
}

// stripExtension removes a trailing known document extension, if present.
func stripExtension(s string) string {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return s
	}
	ext := strings.ToLower(s[i+1:])
	if _, ok := knownExtensions[ext]; ok {
		return s[:i]
	}
	return s
}

// isPlatformToken reports whether a token is upload-system noise rather
// than part of a name: known filler words and pure-numeric IDs.
func isPlatformToken(t string) bool {
	if _, ok := platformTokens[t]; ok {
		return true
	}
	allDigits := true
	for _, r := range t {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	return allDigits && len(t) > 0
}
