package manchu

import "strings"

// positionOf implements the positional rule: a lone letter is isolate, the
// first letter of a word is initial, the last is final, everything between
// is medial. Letters that lack a distinct shape for a position fall back to
// their isolate form inside Letter.Form, keeping this rule uniform.
func positionOf(i, n int) Position {
	switch {
	case n == 1:
		return Isolate
	case i == 0:
		return Initial
	case i == n-1:
		return Final
	default:
		return Medial
	}
}

// Resolve maps an ordered unit sequence to script code points, selecting
// each letter's positional form by the unit's place in the word. A unit
// whose letter is missing from the registry yields a MappingError; that can
// only happen with unit sequences not produced by this alphabet's Tokenize.
func (a *Alphabet) Resolve(units []Unit) (string, error) {
	var b strings.Builder
	n := len(units)
	for i, u := range units {
		l, ok := a.letters[u.Letter]
		if !ok {
			return "", &MappingError{Unit: u.Text, Letter: u.Letter}
		}
		b.WriteString(l.Form(positionOf(i, n)))
	}
	return b.String(), nil
}
