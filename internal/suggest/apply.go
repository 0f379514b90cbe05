package suggest

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Apply replaces the range of s in text with its replacement. Offsets are in
// characters.
func Apply(text string, s Suggestion) (string, error) {
	runes := []rune(text)
	if s.Start < 0 || s.End < s.Start || s.End > len(runes) {
		return "", fmt.Errorf("suggestion range [%d, %d) out of bounds for length %d", s.Start, s.End, len(runes))
	}
	return string(runes[:s.Start]) + s.Replacement + string(runes[s.End:]), nil
}

// ApplyAll applies a set of non-overlapping suggestions, last first, so the
// earlier offsets stay valid.
func ApplyAll(text string, list []Suggestion) (string, error) {
	sorted := make([]Suggestion, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})
	var err error
	for _, s := range sorted {
		text, err = Apply(text, s)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

type Stats struct {
	TotalIssues    int     `json:"totalIssues"`
	GrammarIssues  int     `json:"grammarIssues"`
	SpellingIssues int     `json:"spellingIssues"`
	StyleIssues    int     `json:"styleIssues"`
	WordCount      int     `json:"wordCount"`
	IssueRate      float64 `json:"issueRate"`
}

// ComputeStats summarises list against text. IssueRate is issues per 100
// words, one decimal.
func ComputeStats(text string, list []Suggestion) Stats {
	st := Stats{TotalIssues: len(list), WordCount: len(strings.Fields(text))}
	for _, s := range list {
		switch s.Category {
		case CategoryGrammar:
			st.GrammarIssues++
		case CategorySpelling:
			st.SpellingIssues++
		case CategoryStyle:
			st.StyleIssues++
		}
	}
	if st.WordCount > 0 {
		st.IssueRate = math.Round(float64(st.TotalIssues)/float64(st.WordCount)*1000) / 10
	}
	return st
}
