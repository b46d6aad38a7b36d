package manchu

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit is one matched romanization unit: a maximal slice of the input that
// corresponds to exactly one script letter.
type Unit struct {
	Text   string // matched text, lowercased
	Class  Class
	Letter LetterID
	Offset int // byte offset into the word as given
}

// Tokenize partitions a word into romanization units by greedy longest
// match. Matching is case-insensitive; capitalization carries no meaning in
// this romanization. Either the whole word tokenizes or an
// UnrecognizedInputError is returned and there is no partial result.
func (a *Alphabet) Tokenize(word string) ([]Unit, error) {
	w, source := foldWord(word)
	var units []Unit
	for i := 0; i < len(w); {
		max := a.maxUnit
		if rem := len(w) - i; rem < max {
			max = rem
		}
		matched := false
		for n := max; n >= 1; n-- {
			u, ok := a.units[w[i:i+n]]
			if !ok {
				continue
			}
			units = append(units, Unit{Text: u.Text, Class: u.Class, Letter: u.Letter, Offset: source[i]})
			i += n
			matched = true
			break
		}
		if !matched {
			off := source[i]
			_, size := utf8.DecodeRuneInString(word[off:])
			return nil, &UnrecognizedInputError{Word: word, Substring: word[off : off+size], Offset: off}
		}
	}
	return units, nil
}

// foldWord lowercases a word one rune at a time and returns, for every byte
// of the lowered form, the byte offset of the rune it came from. Lowercasing
// can change a rune's byte length, so offsets into the lowered form cannot be
// used on the original directly.
func foldWord(word string) (string, []int) {
	var b strings.Builder
	b.Grow(len(word))
	source := make([]int, 0, len(word))
	for i, r := range word {
		lr := unicode.ToLower(r)
		for range utf8.RuneLen(lr) {
			source = append(source, i)
		}
		b.WriteRune(lr)
	}
	return b.String(), source
}
