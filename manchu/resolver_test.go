package manchu

import (
	"errors"
	"testing"
)

// shapedAlphabet has distinct code points per position, so the positional
// rule is observable in the output. The standard Unicode table only defines
// isolate forms; a synthetic table is the only way to see the rule pick
// initial/medial/final shapes.
func shapedAlphabet(t *testing.T) *Alphabet {
	t.Helper()
	a, err := NewAlphabet(
		[]UnitMapping{
			{Text: "a", Class: Vowel, Letter: "A"},
			{Text: "b", Class: Consonant, Letter: "B"},
		},
		[]Letter{
			{ID: "A", Forms: [4]string{"Ai", "A<", "A-", "A>"}},
			{ID: "B", Forms: [4]string{Isolate: "Bi", Initial: "B<"}}, // no medial/final shape
		},
	)
	if err != nil {
		t.Fatalf("NewAlphabet: %v", err)
	}
	return a
}

func TestResolvePositionalRule(t *testing.T) {
	a := shapedAlphabet(t)
	tests := []struct {
		input string
		want  string
	}{
		{"a", "Ai"},     // single letter: isolate
		{"aa", "A<A>"},  // first initial, last final
		{"aaa", "A<A-A>"},
		{"aaaa", "A<A-A-A>"},
	}
	for _, tt := range tests {
		got, err := a.ConvertWord(tt.input)
		if err != nil {
			t.Errorf("ConvertWord(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertWord(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveFallbackToIsolate(t *testing.T) {
	a := shapedAlphabet(t)
	// B has no medial or final shape, so those positions render the
	// isolate form while A around it takes its positional shapes.
	got, err := a.ConvertWord("aba")
	if err != nil {
		t.Fatalf("ConvertWord(aba) error: %v", err)
	}
	if want := "A<BiA>"; got != want {
		t.Errorf("ConvertWord(aba) = %q, want %q", got, want)
	}

	got, err = a.ConvertWord("ab")
	if err != nil {
		t.Fatalf("ConvertWord(ab) error: %v", err)
	}
	if want := "A<Bi"; got != want {
		t.Errorf("ConvertWord(ab) = %q, want %q", got, want)
	}

	got, err = a.ConvertWord("ba")
	if err != nil {
		t.Fatalf("ConvertWord(ba) error: %v", err)
	}
	if want := "B<A>"; got != want {
		t.Errorf("ConvertWord(ba) = %q, want %q", got, want)
	}
}

func TestResolveMappingError(t *testing.T) {
	// Resolve accepts arbitrary unit sequences, so a unit pointing at an
	// unregistered letter is representable even though Tokenize can never
	// produce one.
	_, err := Standard().Resolve([]Unit{{Text: "zz", Class: Consonant, Letter: "ZZ"}})
	if err == nil {
		t.Fatal("Resolve with unknown letter succeeded, want error")
	}
	var merr *MappingError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %T, want *MappingError", err)
	}
	if merr.Letter != "ZZ" {
		t.Errorf("MappingError.Letter = %q, want %q", merr.Letter, "ZZ")
	}
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		i, n int
		want Position
	}{
		{0, 1, Isolate},
		{0, 2, Initial},
		{1, 2, Final},
		{0, 3, Initial},
		{1, 3, Medial},
		{2, 3, Final},
	}
	for _, tt := range tests {
		if got := positionOf(tt.i, tt.n); got != tt.want {
			t.Errorf("positionOf(%d, %d) = %v, want %v", tt.i, tt.n, got, tt.want)
		}
	}
}
