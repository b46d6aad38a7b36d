package manchu

import (
	"errors"
	"fmt"
)

// UnrecognizedInputError is returned when a word contains a character or
// cluster that is not part of the transliteration alphabet. The caller can
// recover by stripping or reporting the offending input; the converter never
// substitutes or passes it through.
type UnrecognizedInputError struct {
	Word      string // the word being tokenized, as given
	Substring string // the unmatched input at Offset, as given
	Offset    int    // byte offset into Word
}

func (e *UnrecognizedInputError) Error() string {
	return fmt.Sprintf("manchu: unrecognized input %q at offset %d in word %q", e.Substring, e.Offset, e.Word)
}

// MappingError is returned when a tokenized unit has no script letter in the
// alphabet's registry. This indicates an inconsistency between the
// romanization table and the letter registry, which NewAlphabet rejects at
// construction time, so it is unreachable through a well-formed Alphabet.
type MappingError struct {
	Unit   string
	Letter LetterID
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("manchu: unit %q maps to unknown letter %q", e.Unit, e.Letter)
}

// IsUnrecognizedInput reports whether err is an UnrecognizedInputError.
func IsUnrecognizedInput(err error) bool {
	var target *UnrecognizedInputError
	return errors.As(err, &target)
}
