package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extract builds a summary from the first sentences of text.
func Extract(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) > FallbackSentences {
		sentences = sentences[:FallbackSentences]
	}
	return strings.Join(sentences, " ")
}

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// The whitespace run is dropped; the punctuation stays with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		end := i
		for i < len(text) {
			next, nsize := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(next) {
				break
			}
			i += nsize
		}
		if i > end {
			sentences = append(sentences, text[start:end])
			start = i
		}
	}

	return append(sentences, text[start:])
}
