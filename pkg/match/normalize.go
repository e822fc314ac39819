package match

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks so
// "Pokémon" and "Pokemon" normalize identically. Chained transformers
// carry internal state and are not safe for concurrent use, so each
// call builds its own.
func diacriticStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize case-folds a title, strips diacritics and punctuation, and
// collapses whitespace. Matching and scoring only ever see normalized
// titles. Safe for concurrent use.
func Normalize(title string) string {
	folded, _, err := transform.String(diacriticStripper(), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenSort normalizes a title and reorders its tokens alphabetically,
// so subtitle order ("Ōkami HD" vs "HD Okami") does not affect scores.
func tokenSort(title string) string {
	tokens := strings.Fields(Normalize(title))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
