package verbalizer

import "strings"

// prohibitedTerms is the hard content blacklist. It makes the privacy
// guarantee a verifiable property of the output, not a policy on the
// input: any of these substrings, case-insensitive, rejects an LLM
// response outright regardless of what prompted it.
var prohibitedTerms = []string{
	// gender
	"man", "woman", "boy", "girl", "person named", "user named",
	// appearance
	"wearing", "dressed", "hair", "face", "eyes", "skin", "looks like",
	"attractive", "young", "old", "tall", "short", "glasses",
	// emotion
	"happy", "sad", "angry", "excited", "bored", "confused", "frustrated",
	"smiling", "frowning", "laughing", "crying",
	// race/ethnicity
	"white", "black", "asian", "latino", "hispanic", "african",
	// age
	"elderly", "teenager", "child", "adult",
}

// ValidationResult reports whether candidate text is acceptable for
// audio description.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// ValidateOutput applies a three-stage check before any LLM-produced
// text is accepted: length, non-emptiness, and the prohibited-terms
// blacklist.
func ValidateOutput(text string, maxLength int) ValidationResult {
	if len(text) > maxLength {
		return ValidationResult{Valid: false, Reason: "exceeds max length"}
	}
	if strings.TrimSpace(text) == "" {
		return ValidationResult{Valid: false, Reason: "empty after trimming"}
	}

	lower := strings.ToLower(text)
	for _, term := range prohibitedTerms {
		if strings.Contains(lower, term) {
			return ValidationResult{Valid: false, Reason: "contains prohibited term: " + term}
		}
	}

	return ValidationResult{Valid: true}
}
