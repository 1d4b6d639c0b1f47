package oracle

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

const (
	// minLeakRunes is the shortest token treated as a fragment of the secret
	// word. Shorter tokens ("a", "it") appear inside most words.
	minLeakRunes = 3

	// minVariantRunes is the shortest secret word and token compared by
	// spelling similarity. Below it Jaro-Winkler rates unrelated words such
	// as "car" and "care" as near matches.
	minVariantRunes = 5

	// phoneticFloor is the spelling similarity a homophone must also reach;
	// metaphone codes alone collide for unrelated short words.
	phoneticFloor = 0.8
)

// leakedTokens returns the tokens of text that disclose secret: the word
// itself, an inflection of it, a fragment of it, a close spelling variant
// (Jaro-Winkler >= similarity) or a homophone (same Double Metaphone code).
// Unrelated words that merely contain the secret ("that" for "hat") pass.
func leakedTokens(text, secret string, similarity float64) []string {
	secret = strings.ToLower(strings.TrimSpace(secret))
	if secret == "" {
		return nil
	}
	secretCode, _ := matchr.DoubleMetaphone(secret)

	var leaks []string
	seen := make(map[string]bool)
	for _, tok := range tokenize(text) {
		if seen[tok] {
			continue
		}
		if isLeak(tok, secret, secretCode, similarity) {
			seen[tok] = true
			leaks = append(leaks, tok)
		}
	}
	return leaks
}

func isLeak(tok, secret, secretCode string, similarity float64) bool {
	if tok == secret || isInflection(tok, secret) {
		return true
	}
	n := utf8.RuneCountInString(tok)
	m := utf8.RuneCountInString(secret)
	if n < minLeakRunes {
		return false
	}
	// Short common words ("the" in "together") only count when they make
	// up at least half of the secret word.
	if strings.Contains(secret, tok) && (n > minLeakRunes || 2*n >= m) {
		return true
	}
	jw := matchr.JaroWinkler(tok, secret, false)
	if similarity > 0 && jw >= similarity && n >= minVariantRunes && m >= minVariantRunes {
		return true
	}
	if jw < phoneticFloor || m <= minLeakRunes || n <= minLeakRunes {
		return false
	}
	code, _ := matchr.DoubleMetaphone(tok)
	return code != "" && code == secretCode
}

// isInflection reports whether tok is a regular English inflection of
// secret: plural, past tense, -ing, comparative or agent noun, including
// the spelling changes for a final e, a final y and a doubled consonant.
func isInflection(tok, secret string) bool {
	type form struct {
		stem     string
		suffixes []string
	}
	forms := []form{{secret, []string{"s", "ed", "ing", "er", "ers", "est"}}}
	switch {
	case strings.HasSuffix(secret, "e"):
		forms = append(forms,
			form{secret, []string{"d", "r", "rs", "st"}},
			form{strings.TrimSuffix(secret, "e"), []string{"ing"}})
	case strings.HasSuffix(secret, "y"):
		forms = append(forms, form{strings.TrimSuffix(secret, "y") + "i", []string{"es", "ed", "er", "est"}})
	}
	for _, end := range []string{"s", "x", "z", "ch", "sh", "o"} {
		if strings.HasSuffix(secret, end) {
			forms = append(forms, form{secret, []string{"es"}})
			break
		}
	}
	if last, _ := utf8.DecodeLastRuneInString(secret); isConsonant(last) {
		forms = append(forms, form{secret + string(last), []string{"ed", "ing", "er", "ers"}})
	}

	for _, f := range forms {
		rest, ok := strings.CutPrefix(tok, f.stem)
		if ok && slices.Contains(f.suffixes, rest) {
			return true
		}
	}
	return false
}

func isConsonant(r rune) bool {
	return unicode.IsLetter(r) && !strings.ContainsRune("aeiouy", r)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
