package manchu

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ConvertWord converts a single romanized word to Manchu script. It fails
// with an UnrecognizedInputError if any part of the word is outside the
// transliteration alphabet; a word converts fully or not at all.
func (a *Alphabet) ConvertWord(word string) (string, error) {
	units, err := a.Tokenize(word)
	if err != nil {
		return "", err
	}
	return a.Resolve(units)
}

// ConvertText converts every whitespace-delimited word in text, preserving
// the exact whitespace between words. The first word that fails aborts the
// whole conversion; no partial output is returned.
func (a *Alphabet) ConvertText(text string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(text); {
		j := i
		if r, _ := utf8.DecodeRuneInString(text[i:]); unicode.IsSpace(r) {
			for j < len(text) {
				r, size := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r) {
					break
				}
				j += size
			}
			b.WriteString(text[i:j])
		} else {
			for j < len(text) {
				r, size := utf8.DecodeRuneInString(text[j:])
				if unicode.IsSpace(r) {
					break
				}
				j += size
			}
			word, err := a.ConvertWord(text[i:j])
			if err != nil {
				return "", err
			}
			b.WriteString(word)
		}
		i = j
	}
	return b.String(), nil
}

// ConvertWord converts one romanized word using the standard alphabet.
func ConvertWord(word string) (string, error) {
	return std.ConvertWord(word)
}

// ConvertText converts romanized text using the standard alphabet,
// preserving whitespace.
func ConvertText(text string) (string, error) {
	return std.ConvertText(text)
}
