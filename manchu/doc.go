// Package manchu converts romanized Manchu (Möllendorff transliteration)
// into Manchu script, encoded as code points from the Unicode Mongolian
// block.
//
//	script, err := manchu.ConvertWord("manju")
//	// script == "ᠮᠠᠨᠵᡠ"
//
// Conversion is a pure function of the input and the static alphabet
// tables, so it is safe to call from any number of goroutines.
package manchu
