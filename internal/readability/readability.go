// Package readability computes Flesch reading-ease style metrics for plain text.
package readability

import (
	"math"
	"regexp"
	"strings"
)

const (
	LevelNoContent       = "No Content"
	LevelVeryEasy        = "Very Easy"
	LevelEasy            = "Easy"
	LevelFairlyEasy      = "Fairly Easy"
	LevelStandard        = "Standard"
	LevelFairlyDifficult = "Fairly Difficult"
	LevelDifficult       = "Difficult"
	LevelVeryDifficult   = "Very Difficult"
)

// Metrics is the persisted shape of a readability score. Field names are shared
// with every stored document and version row, so they must not change.
type Metrics struct {
	FleschReadingEase       float64 `json:"fleschReadingEase"`
	FleschKincaidGrade      float64 `json:"fleschKincaidGrade"`
	AverageWordsPerSentence float64 `json:"averageWordsPerSentence"`
	AverageSyllablesPerWord float64 `json:"averageSyllablesPerWord"`
	WordCount               int     `json:"wordCount"`
	SentenceCount           int     `json:"sentenceCount"`
	SyllableCount           int     `json:"syllableCount"`
	ReadabilityLevel        string  `json:"readabilityLevel"`
}

// Analysis holds the unrounded values Metrics is derived from.
type Analysis struct {
	WordCount               int
	SentenceCount           int
	SyllableCount           int
	AverageWordsPerSentence float64
	AverageSyllablesPerWord float64
	Ease                    float64
	Grade                   float64
}

var (
	sentenceDelimiters = regexp.MustCompile(`[.!?]+`)
	asciiLetter        = regexp.MustCompile(`[a-zA-Z]`)
)

// Score never fails: blank text yields zeroed metrics labelled LevelNoContent.
func Score(text string) Metrics {
	return Analyze(text).Metrics()
}

func Analyze(text string) Analysis {
	if strings.TrimSpace(text) == "" {
		return Analysis{}
	}
	words := Words(text)
	a := Analysis{
		WordCount:     len(words),
		SentenceCount: CountSentences(text),
	}
	for _, w := range words {
		a.SyllableCount += CountSyllables(w)
	}
	if a.SentenceCount > 0 {
		a.AverageWordsPerSentence = float64(a.WordCount) / float64(a.SentenceCount)
	}
	if a.WordCount > 0 {
		a.AverageSyllablesPerWord = float64(a.SyllableCount) / float64(a.WordCount)
	}
	a.Ease = clamp(206.835-1.015*a.AverageWordsPerSentence-84.6*a.AverageSyllablesPerWord, 0, 100)
	a.Grade = math.Max(0, 0.39*a.AverageWordsPerSentence+11.8*a.AverageSyllablesPerWord-15.59)
	return a
}

func (a Analysis) Empty() bool {
	return a.WordCount == 0 && a.SentenceCount == 0
}

func (a Analysis) Level() string {
	if a.Empty() {
		return LevelNoContent
	}
	return LevelFor(a.Ease)
}

func (a Analysis) Metrics() Metrics {
	if a.Empty() {
		return Metrics{ReadabilityLevel: LevelNoContent}
	}
	return Metrics{
		FleschReadingEase:       round(a.Ease, 1),
		FleschKincaidGrade:      round(a.Grade, 1),
		AverageWordsPerSentence: round(a.AverageWordsPerSentence, 1),
		AverageSyllablesPerWord: round(a.AverageSyllablesPerWord, 2),
		WordCount:               a.WordCount,
		SentenceCount:           a.SentenceCount,
		SyllableCount:           a.SyllableCount,
		ReadabilityLevel:        a.Level(),
	}
}

func LevelFor(ease float64) string {
	switch {
	case ease >= 90:
		return LevelVeryEasy
	case ease >= 80:
		return LevelEasy
	case ease >= 70:
		return LevelFairlyEasy
	case ease >= 60:
		return LevelStandard
	case ease >= 50:
		return LevelFairlyDifficult
	case ease >= 30:
		return LevelDifficult
	default:
		return LevelVeryDifficult
	}
}

// Words returns the whitespace-delimited tokens that contain at least one
// ASCII letter.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := fields[:0:0]
	for _, f := range fields {
		if asciiLetter.MatchString(f) {
			words = append(words, f)
		}
	}
	return words
}

func CountSentences(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	count := 0
	for _, seg := range sentenceDelimiters.Split(text, -1) {
		if strings.TrimSpace(seg) != "" {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// CountSyllables approximates syllables by counting vowel groups. Words of three
// letters or fewer count as one syllable, and a trailing silent "e" is dropped
// when the word already has more than one group.
func CountSyllables(word string) int {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	letters := b.String()
	if len(letters) <= 3 {
		return 1
	}
	syllables := 0
	prevVowel := false
	for i := 0; i < len(letters); i++ {
		vowel := strings.IndexByte("aeiouy", letters[i]) >= 0
		if vowel && !prevVowel {
			syllables++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(letters, "e") && syllables > 1 {
		syllables--
	}
	if syllables < 1 {
		return 1
	}
	return syllables
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
