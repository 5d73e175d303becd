package services

import (
	"strings"
	"unicode"
)

var baseSelfHarmPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

// selfHarmPhrases holds the dictionary in the same canonical form as
// cleaned input, so collapsed letters still line up ("kill" -> "kil").
var selfHarmPhrases = func() []string {
	out := make([]string, len(baseSelfHarmPhrases))
	for i, p := range baseSelfHarmPhrases {
		out[i] = CleanText(p)
	}
	return out
}()

var obfuscation = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"!", "i",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
	"а", "a", // Cyrillic
	"е", "e",
	"і", "i",
	"о", "o",
	"р", "p",
)

// CleanText lowercases text, undoes common character substitutions, turns
// everything that is not a letter into a single space and collapses repeated
// letters ("diiie" -> "die").
func CleanText(text string) string {
	cleaned := obfuscation.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	lastWasLetter := false
	pendingSpace := false
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			pendingSpace = b.Len() > 0
			lastWasLetter = false
			continue
		}
		if lastWasLetter && r == last {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
		last = r
		lastWasLetter = true
	}
	return b.String()
}

// Screening is the result of checking a question for self-harm language.
type Screening struct {
	SelfHarm bool
	Matched  []string
}

// ScreenQuestion looks for self-harm phrases on word boundaries of the
// cleaned text.
func ScreenQuestion(text string) Screening {
	cleaned := CleanText(text)
	if cleaned == "" {
		return Screening{}
	}
	padded := " " + cleaned + " "

	var s Screening
	for _, phrase := range selfHarmPhrases {
		if strings.Contains(padded, " "+phrase+" ") {
			s.Matched = append(s.Matched, phrase)
		}
	}
	s.SelfHarm = len(s.Matched) > 0
	return s
}
