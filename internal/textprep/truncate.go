package textprep

import (
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
)

// TruncateAtSentence shortens text to at most maxChars runes, cutting at a
// sentence boundary when one fits. Zero or negative maxChars disables
// truncation. A single oversized sentence falls back to a hard rune cut.
func TruncateAtSentence(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	tokenizer := sentences.NewSentenceTokenizer(nil)

	var kept []string
	used := 0
	for _, s := range tokenizer.Tokenize(text) {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		n := utf8.RuneCountInString(sentence)
		if used+n > maxChars {
			break
		}
		kept = append(kept, sentence)
		used += n + 1
	}

	if len(kept) == 0 {
		runes := []rune(text)
		return strings.TrimSpace(string(runes[:maxChars]))
	}
	return strings.Join(kept, " ")
}
