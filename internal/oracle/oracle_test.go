package oracle

import (
	"testing"
)

func TestNormalizeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"yes", "yes"},
		{"Yes.", "yes"},
		{"  'No'  ", "no"},
		{"Question: it asks about size", "question"},
		{"\"guess\"", "guess"},
		{"", ""},
		{"...", ""},
	}
	for _, tc := range tests {
		if got := NormalizeLabel(tc.in); got != tc.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseYesNo_FailsOpenToNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want YesNo
	}{
		{"yes", Yes},
		{"YES!", Yes},
		{"no", No},
		{"maybe", No},
		{"yes and no", Yes},
		{"I think yes", No},
		{"", No},
	}
	for _, tc := range tests {
		if got := ParseYesNo(tc.in); got != tc.want {
			t.Errorf("ParseYesNo(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTurnKind_DefaultsToGuess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want TurnKind
	}{
		{"question", Question},
		{"Question.", Question},
		{"guess", Guess},
		{"statement", Guess},
		{"", Guess},
	}
	for _, tc := range tests {
		if got := ParseTurnKind(tc.in); got != tc.want {
			t.Errorf("ParseTurnKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Verdict
	}{
		{"correct", Correct},
		{"Correct!", Correct},
		{"incorrect", Incorrect},
		{"almost", Incorrect},
	}
	for _, tc := range tests {
		if got := ParseVerdict(tc.in); got != tc.want {
			t.Errorf("ParseVerdict(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLeakedTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		secret string
		want   []string
	}{
		{name: "clean", text: "It has soft fur and likes milk.", secret: "cat", want: nil},
		{name: "exact word", text: "A Cat says meow.", secret: "cat", want: []string{"cat"}},
		{name: "plural", text: "Many cats sleep all day.", secret: "cat", want: []string{"cats"}},
		{name: "long fragment", text: "It starts like butter.", secret: "butterfly", want: []string{"butter"}},
		{name: "short common fragment", text: "Put the pieces together.", secret: "weather", want: nil},
		{name: "spelling variant", text: "Think of an elefant.", secret: "elephant", want: []string{"elefant"}},
		{name: "empty secret", text: "anything", secret: "", want: nil},
		{name: "word containing a short secret", text: "Yes, that is what you wear on your head.", secret: "hat", want: nil},
		{name: "near spelling of a short secret", text: "You must take good care of it.", secret: "car", want: nil},
		{name: "rhymes with a short secret", text: "You can hear it every year.", secret: "ear", want: nil},
		{name: "ends with the secret", text: "A giant lives in the location.", secret: "ant", want: nil},
		{name: "past tense of final e", text: "She baked a cake and was baking more.", secret: "bake", want: []string{"baked", "baking"}},
		{name: "y to ies", text: "Two ponies ran.", secret: "pony", want: []string{"ponies"}},
		{name: "doubled consonant", text: "He was running fast.", secret: "run", want: []string{"running"}},
		{name: "es plural", text: "The buses are late.", secret: "bus", want: []string{"buses"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := leakedTokens(tc.text, tc.secret, defaultLeakSimilarity)
			if len(got) != len(tc.want) {
				t.Fatalf("leakedTokens() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("leakedTokens()[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
