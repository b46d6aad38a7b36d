package manchu

import "fmt"

// LetterID identifies a letter of the Manchu alphabet independent of the
// shape it takes in a word.
type LetterID string

// Class describes what kind of romanization unit matched the input.
type Class int

const (
	Vowel Class = iota
	Consonant
	// Cluster is a multi-character romanization (digraph or
	// apostrophe-marked variant) that maps to a single script letter.
	Cluster
)

func (c Class) String() string {
	switch c {
	case Vowel:
		return "vowel"
	case Consonant:
		return "consonant"
	case Cluster:
		return "cluster"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Position is the contextual shape a letter takes in a word.
type Position int

const (
	Isolate Position = iota
	Initial
	Medial
	Final
)

func (p Position) String() string {
	switch p {
	case Isolate:
		return "isolate"
	case Initial:
		return "initial"
	case Medial:
		return "medial"
	case Final:
		return "final"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Letter is one letter of the alphabet with its positional forms. Each form
// is a string of one or more code points. Only the isolate form is required;
// a missing form falls back to the isolate form. The standard Unicode table
// defines only isolate forms, because the Mongolian block encodes letters
// positionlessly and leaves shape selection to the renderer, but alphabets
// with distinct per-position code points are fully supported.
type Letter struct {
	ID    LetterID
	Forms [4]string
}

// Form returns the code points for the given position, falling back to the
// isolate form when the letter has no distinct shape there.
func (l Letter) Form(p Position) string {
	if s := l.Forms[p]; s != "" {
		return s
	}
	return l.Forms[Isolate]
}

// UnitMapping declares one romanization unit: the latin text that matches
// the input and the letter it stands for.
type UnitMapping struct {
	Text   string
	Class  Class
	Letter LetterID
}

// Alphabet is an immutable romanization table plus letter registry. A single
// Alphabet may be shared by any number of concurrent conversions.
type Alphabet struct {
	units   map[string]UnitMapping
	letters map[LetterID]Letter
	maxUnit int // longest unit text in bytes
}

// NewAlphabet builds an Alphabet from a romanization table and a letter
// registry, validating that the two are consistent: unit texts must be
// unique and non-empty, every unit must map to a registered letter, and
// every letter must define an isolate form. Ambiguity between units of equal
// length is impossible by construction since unit texts are map keys.
func NewAlphabet(units []UnitMapping, letters []Letter) (*Alphabet, error) {
	a := &Alphabet{
		units:   make(map[string]UnitMapping, len(units)),
		letters: make(map[LetterID]Letter, len(letters)),
	}
	for _, l := range letters {
		if l.ID == "" {
			return nil, fmt.Errorf("manchu: letter with empty ID")
		}
		if l.Forms[Isolate] == "" {
			return nil, fmt.Errorf("manchu: letter %q has no isolate form", l.ID)
		}
		if _, dup := a.letters[l.ID]; dup {
			return nil, fmt.Errorf("manchu: duplicate letter %q", l.ID)
		}
		a.letters[l.ID] = l
	}
	for _, u := range units {
		if u.Text == "" {
			return nil, fmt.Errorf("manchu: unit with empty text for letter %q", u.Letter)
		}
		if _, dup := a.units[u.Text]; dup {
			return nil, fmt.Errorf("manchu: duplicate unit %q", u.Text)
		}
		if _, ok := a.letters[u.Letter]; !ok {
			return nil, fmt.Errorf("manchu: unit %q maps to unregistered letter %q", u.Text, u.Letter)
		}
		a.units[u.Text] = u
		if len(u.Text) > a.maxUnit {
			a.maxUnit = len(u.Text)
		}
	}
	return a, nil
}

// Letters returns the registry as a slice, in no particular order.
func (a *Alphabet) Letters() []Letter {
	out := make([]Letter, 0, len(a.letters))
	for _, l := range a.letters {
		out = append(out, l)
	}
	return out
}

// Units returns the romanization table as a slice, in no particular order.
func (a *Alphabet) Units() []UnitMapping {
	out := make([]UnitMapping, 0, len(a.units))
	for _, u := range a.units {
		out = append(out, u)
	}
	return out
}

// Letter looks up a letter by ID.
func (a *Alphabet) Letter(id LetterID) (Letter, bool) {
	l, ok := a.letters[id]
	return l, ok
}
