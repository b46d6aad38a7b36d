package manchu

// The standard tables follow the Möllendorff romanization as used by the
// common "manchu_converter" tooling: one script letter per unit, encoded as
// its base code point in the Unicode Mongolian block (U+1820–U+18AA). The
// apostrophe clusters k', g', h', ts' and c'y mark the loanword consonants
// used for Chinese borrowings; v and x are ASCII aliases for ū and š.

// std is the process-wide alphabet, built once and never mutated.
var std = func() *Alphabet {
	a, err := NewAlphabet(stdUnits, stdLetters)
	if err != nil {
		// The standard tables are fixed data; failing to build them is
		// a defect, not a runtime condition.
		panic(err)
	}
	return a
}()

// Standard returns the built-in Manchu alphabet.
func Standard() *Alphabet { return std }

func iso(r rune) [4]string { return [4]string{Isolate: string(r)} }

var stdLetters = []Letter{
	{ID: "A", Forms: iso('ᠠ')},
	{ID: "E", Forms: iso('ᡝ')},
	{ID: "I", Forms: iso('ᡳ')},
	{ID: "O", Forms: iso('ᠣ')},
	{ID: "U", Forms: iso('ᡠ')},
	{ID: "UU", Forms: iso('ᡡ')}, // ū
	{ID: "N", Forms: iso('ᠨ')},
	{ID: "NG", Forms: iso('ᠩ')},
	{ID: "B", Forms: iso('ᠪ')},
	{ID: "P", Forms: iso('ᡦ')},
	{ID: "S", Forms: iso('ᠰ')},
	{ID: "SH", Forms: iso('ᡧ')}, // š
	{ID: "K", Forms: iso('ᡴ')},
	{ID: "G", Forms: iso('ᡤ')},
	{ID: "H", Forms: iso('ᡥ')},
	{ID: "L", Forms: iso('ᠯ')},
	{ID: "M", Forms: iso('ᠮ')},
	{ID: "T", Forms: iso('ᡨ')},
	{ID: "D", Forms: iso('ᡩ')},
	{ID: "R", Forms: iso('ᡵ')},
	{ID: "J", Forms: iso('ᠵ')},
	{ID: "Y", Forms: iso('ᠶ')},
	{ID: "C", Forms: iso('ᠴ')},
	{ID: "F", Forms: iso('ᡶ')},
	{ID: "W", Forms: iso('ᠸ')},
	{ID: "TS", Forms: iso('ᡮ')}, // ts'
	{ID: "DZ", Forms: iso('ᡯ')},
	{ID: "KH", Forms: iso('ᠻ')}, // k'
	{ID: "GH", Forms: iso('ᡬ')}, // g'
	{ID: "HH", Forms: iso('ᡭ')}, // h'
	{ID: "CY", Forms: iso('ᡱ')}, // c'y
}

var stdUnits = []UnitMapping{
	{Text: "a", Class: Vowel, Letter: "A"},
	{Text: "e", Class: Vowel, Letter: "E"},
	{Text: "i", Class: Vowel, Letter: "I"},
	{Text: "o", Class: Vowel, Letter: "O"},
	{Text: "u", Class: Vowel, Letter: "U"},
	{Text: "ū", Class: Vowel, Letter: "UU"},
	{Text: "v", Class: Vowel, Letter: "UU"}, // ASCII alias for ū
	{Text: "n", Class: Consonant, Letter: "N"},
	{Text: "b", Class: Consonant, Letter: "B"},
	{Text: "p", Class: Consonant, Letter: "P"},
	{Text: "s", Class: Consonant, Letter: "S"},
	{Text: "š", Class: Consonant, Letter: "SH"},
	{Text: "x", Class: Consonant, Letter: "SH"}, // ASCII alias for š
	{Text: "k", Class: Consonant, Letter: "K"},
	{Text: "g", Class: Consonant, Letter: "G"},
	{Text: "h", Class: Consonant, Letter: "H"},
	{Text: "l", Class: Consonant, Letter: "L"},
	{Text: "m", Class: Consonant, Letter: "M"},
	{Text: "t", Class: Consonant, Letter: "T"},
	{Text: "d", Class: Consonant, Letter: "D"},
	{Text: "r", Class: Consonant, Letter: "R"},
	{Text: "j", Class: Consonant, Letter: "J"},
	{Text: "y", Class: Consonant, Letter: "Y"},
	{Text: "c", Class: Consonant, Letter: "C"},
	{Text: "f", Class: Consonant, Letter: "F"},
	{Text: "w", Class: Consonant, Letter: "W"},
	{Text: "ng", Class: Cluster, Letter: "NG"},
	{Text: "ts'", Class: Cluster, Letter: "TS"},
	{Text: "dz", Class: Cluster, Letter: "DZ"},
	{Text: "k'", Class: Cluster, Letter: "KH"},
	{Text: "g'", Class: Cluster, Letter: "GH"},
	{Text: "h'", Class: Cluster, Letter: "HH"},
	{Text: "c'y", Class: Cluster, Letter: "CY"},
}
