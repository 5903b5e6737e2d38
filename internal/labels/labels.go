// Package labels canonicalizes species strings into one comparable label
// space shared by ground truth and model predictions.
package labels

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// Background is the label for "no animal present".
	Background = "background"

	// FormatError is the label assigned to a model response that could not be
	// parsed. Normalizers always lower-case, so no ground truth can equal it.
	FormatError = "FORMAT_ERROR"
)

// absentSynonyms are the raw values (after trimming and lower-casing) that
// all mean "no animal in the frame".
var absentSynonyms = map[string]struct{}{
	"":           {},
	"null":       {},
	"none":       {},
	"absent":     {},
	"empty":      {},
	"nan":        {},
	"n/a":        {},
	"background": {},
	"vazio":      {},
	"nenhum":     {},
	"nenhuma":    {},
}

// Mode selects how aggressively labels are canonicalized.
type Mode string

const (
	// ModeStandard trims and lower-cases.
	ModeStandard Mode = "standard"

	// ModeCompact additionally removes whitespace and underscores so that
	// "Sciurus spadiceus", "sciurus_spadiceus" and "sciurusspadiceus" match.
	ModeCompact Mode = "compact"
)

// ParseMode validates a mode name. Empty means compact.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeCompact:
		return ModeCompact, nil
	case ModeStandard:
		return m, nil
	}
	return "", fmt.Errorf("unknown normalization %q: must be standard or compact", s)
}

// Normalizer maps a raw label to its canonical form.
type Normalizer func(raw string) string

// ForMode returns the normalizer for the given mode. Unknown modes fall back
// to [Compact].
func ForMode(m Mode) Normalizer {
	if m == ModeStandard {
		return Normalize
	}
	return Compact
}

// Normalize trims and lower-cases raw, returning [Background] for any
// member of the absence-synonym set.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(raw)))
	if _, ok := absentSynonyms[s]; ok {
		return Background
	}
	return s
}

// Compact is [Normalize] with all whitespace and underscores removed.
func Compact(raw string) string {
	s := Normalize(raw)
	if s == Background {
		return s
	}
	s = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if _, ok := absentSynonyms[s]; ok {
		return Background
	}
	return s
}

// Matches reports whether a predicted label is a correct answer for truth.
// A format error is never correct.
func Matches(predicted, truth string) bool {
	return predicted == truth && predicted != FormatError
}

// IsAbsent reports whether raw normalizes to [Background].
func IsAbsent(raw string) bool {
	return Normalize(raw) == Background
}
