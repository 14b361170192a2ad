// Package normalize holds the string canonicalization shared by identity
// resolution and model matching. Survey labels are free text typed on phones
// in the field: casing, spacing, punctuation and accent marks are all
// unreliable and must not affect matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// foldMarks decomposes to NFD, drops combining marks, recomposes. Shop names
// arrive both with and without Vietnamese diacritics for the same store.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Label canonicalizes a free-text label: diacritic fold, lower-case, trim,
// collapse internal whitespace. Empty or blank input yields "".
func Label(s string) string {
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = multiSpace.ReplaceAllString(s, " ")
	return s
}

// ModelToken canonicalizes a model name for comparison: Label, then every
// non-alphanumeric rune (whitespace included) removed. "Model-X 55" and
// "modelx55" collapse to the same token.
func ModelToken(s string) string {
	s = Label(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// minTokenLen drops tokens too short to discriminate between store names.
const minTokenLen = 3

// Tokenize splits a normalized label into its discriminative tokens,
// deduplicated, preserving first-seen order. Tokens shorter than three
// characters are discarded.
func Tokenize(s string) []string {
	s = Label(s)
	if s == "" {
		return nil
	}
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if len(tok) < minTokenLen || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

// TokenSet returns Tokenize output as a membership set.
func TokenSet(s string) map[string]bool {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}
