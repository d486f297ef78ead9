// Package prompt extracts the lexical features of a prompt that the energy
// scoring model was trained on.
//
// The heuristics are deliberately crude (vowel-cluster syllables, suffix-based
// verbs) and must stay that way: the remote model expects exactly these values.
package prompt

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Punctuation is the ASCII punctuation set used for counting and for stripping
// tokens. It is not Unicode aware.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// LongWordThreshold is the stripped token length above which a token counts as long.
const LongWordThreshold = 6

// verbSuffixes mark a token as a verb when its lower-cased form ends with one of them.
var verbSuffixes = []string{"ing", "ed", "ate", "ize", "ise"}

// Features holds the per-prompt features. It is built once by Analyze and never mutated.
type Features struct {
	WordCount              int     `json:"word_count"`
	SentenceCount          int     `json:"sentence_count"`
	AvgWordLength          float64 `json:"avg_word_length"`
	UniqueWordCount        int     `json:"unique_word_count"`
	AvgSentenceLength      float64 `json:"avg_sentence_length"`
	PunctuationCount       int     `json:"punctuation_count"`
	LongWordCount          int     `json:"long_word_count"`
	VerbCount              int     `json:"verb_count"`
	MonosyllableCount      int     `json:"monosyllabcount"`
	SyllableCount          int     `json:"syllable_count"`
	CharCount              int     `json:"char_count"`
	LetterCount            int     `json:"letter_count"`
	PolysyllableCount      int     `json:"polysyllabcount"`
	QuestionMarks          int     `json:"question_marks"`
	ExclamationMarks       int     `json:"exclamation_marks"`
	WordDiversity          float64 `json:"word_diversity"`
	LexicalDiversity       float64 `json:"lexical_diversity"`
	LexiconCount           int     `json:"lexicon_count"`
	WordCountSquared       int     `json:"word_count_squared"`
	AvgSentenceLengthCubed float64 `json:"avg_sentence_length_cubed"`
}

// Analyze computes the Features of text. It accepts any input, including the
// empty string, and never fails: ratios default to 0 and sentence_count to 1.
func Analyze(text string) Features {
	words := strings.FieldsFunc(text, isSpace)
	wordCount := len(words)

	sentences := splitSentences(text)
	sentenceCount := len(sentences)
	if sentenceCount < 1 {
		sentenceCount = 1
	}

	var (
		strippedLenSum int
		longWords      int
		verbs          int
		monosyllables  int
		polysyllables  int
		syllables      int
	)
	unique := make(map[string]struct{}, wordCount)

	// Full case mapping: U+0130 lowers to "i\u0307" and a word-final capital
	// sigma to U+03C2, unlike strings.ToLower.
	lower := cases.Lower(language.Und)

	for _, word := range words {
		folded := lower.String(word)
		stripped := stripPunctuation(word)
		strippedLen := utf8.RuneCountInString(stripped)

		strippedLenSum += strippedLen
		if strippedLen > LongWordThreshold {
			longWords++
		}
		unique[stripPunctuation(folded)] = struct{}{}

		if hasVerbSuffix(folded) {
			verbs++
		}

		clusters := vowelClusters(folded)
		switch {
		case clusters == 1:
			monosyllables++
		case clusters >= 3:
			polysyllables++
		}
		if clusters < 1 {
			syllables++
		} else {
			syllables += clusters
		}
	}

	var sentenceLenSum int
	for _, s := range sentences {
		sentenceLenSum += utf8.RuneCountInString(s)
	}
	avgSentenceLength := float64(sentenceLenSum) / float64(sentenceCount)

	var avgWordLength, diversity float64
	if wordCount > 0 {
		avgWordLength = float64(strippedLenSum) / float64(wordCount)
		diversity = float64(len(unique)) / float64(wordCount)
	}

	f := Features{
		WordCount:              wordCount,
		SentenceCount:          sentenceCount,
		AvgWordLength:          round(avgWordLength, 2),
		UniqueWordCount:        len(unique),
		AvgSentenceLength:      round(avgSentenceLength, 2),
		LongWordCount:          longWords,
		VerbCount:              verbs,
		MonosyllableCount:      monosyllables,
		SyllableCount:          syllables,
		PolysyllableCount:      polysyllables,
		WordDiversity:          round(diversity, 4),
		LexicalDiversity:       round(diversity, 4),
		LexiconCount:           wordCount,
		WordCountSquared:       wordCount * wordCount,
		AvgSentenceLengthCubed: round(avgSentenceLength*avgSentenceLength*avgSentenceLength, 2),
	}

	for _, r := range text {
		f.CharCount++
		if unicode.IsLetter(r) {
			f.LetterCount++
		}
		if isPunctuation(r) {
			f.PunctuationCount++
		}
		switch r {
		case '?':
			f.QuestionMarks++
		case '!':
			f.ExclamationMarks++
		}
	}

	return f
}

// isSpace reports whether r separates tokens. It is unicode.IsSpace plus the
// ASCII information separators U+001C..U+001F, which the training pipeline's
// whitespace split also treated as separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isPunctuation(r rune) bool {
	return r < utf8.RuneSelf && strings.ContainsRune(Punctuation, r)
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func stripPunctuation(s string) string {
	return strings.TrimFunc(s, isPunctuation)
}

// splitSentences splits on runs of '.', '?' and '!' and returns the
// whitespace-trimmed, non-empty segments.
func splitSentences(text string) []string {
	var out []string
	for _, seg := range strings.FieldsFunc(text, isSentenceTerminator) {
		if seg = strings.TrimFunc(seg, isSpace); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func hasVerbSuffix(word string) bool {
	for _, suffix := range verbSuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

// vowelClusters counts maximal runs of a, e, i, o, u in an already lower-cased word.
func vowelClusters(word string) int {
	n := 0
	inCluster := false
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			if !inCluster {
				n++
			}
			inCluster = true
		default:
			inCluster = false
		}
	}
	return n
}

// round rounds v to the given number of decimals, half-to-even on the exact
// binary value. This matches the rounding applied to the training data, which
// math.Round(v*100)/100 does not (e.g. 2.675 → 2.67).
func round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
