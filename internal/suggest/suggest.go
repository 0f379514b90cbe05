// Package suggest locates correction candidates in free text.
//
// An Engine runs a fixed list of Sources over the text, merges their output,
// orders it by position and drops every candidate that overlaps an earlier
// one. Sources report byte offsets; the Engine reports character offsets.
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Category string

const (
	CategoryGrammar  Category = "grammar"
	CategorySpelling Category = "spelling"
	CategoryStyle    Category = "style"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGrammar, CategorySpelling, CategoryStyle:
		return true
	}
	return false
}

// Suggestion is a proposed edit of the half-open range [Start, End) of the
// text it was computed from.
type Suggestion struct {
	Start       int      `json:"startIndex"`
	End         int      `json:"endIndex"`
	Category    Category `json:"type"`
	Original    string   `json:"originalText"`
	Replacement string   `json:"suggestedText"`
	Message     string   `json:"message"`
}

func (s Suggestion) Overlaps(start, end int) bool {
	return s.Start < end && start < s.End
}

// Source produces candidates for text. prior holds the candidates found by
// the sources that ran before it, in byte offsets.
type Source interface {
	Name() string
	Check(text string, prior []Suggestion) ([]Suggestion, error)
}

type Suggester interface {
	Suggest(text string) []Suggestion
}

type Engine struct {
	sources []Source
}

func New(sources ...Source) *Engine {
	return &Engine{sources: sources}
}

func (e *Engine) Sources() []string {
	names := make([]string, 0, len(e.sources))
	for _, src := range e.sources {
		names = append(names, src.Name())
	}
	return names
}

func (e *Engine) Suggest(text string) []Suggestion {
	if strings.TrimSpace(text) == "" {
		return []Suggestion{}
	}
	var candidates []Suggestion
	for _, src := range e.sources {
		found, err := runSource(src, text, candidates)
		if err != nil {
			logutil.GetLogger(context.Background()).Warn("suggestion source failed, skipping",
				zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		for _, c := range found {
			if !validCandidate(text, c) {
				logutil.GetLogger(context.Background()).Debug("drop invalid suggestion",
					zap.String("source", src.Name()), zap.Int("start", c.Start), zap.Int("end", c.End),
					zap.String("type", string(c.Category)))
				continue
			}
			c.Original = text[c.Start:c.End]
			candidates = append(candidates, c)
		}
	}
	kept := resolveOverlaps(candidates)
	return toCharOffsets(text, kept)
}

func runSource(src Source, text string, prior []Suggestion) (found []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("source panic: %v", r)
		}
	}()
	view := make([]Suggestion, len(prior))
	copy(view, prior)
	return src.Check(text, view)
}

func validCandidate(text string, c Suggestion) bool {
	if !c.Category.Valid() {
		return false
	}
	if c.Start < 0 || c.End <= c.Start || c.End > len(text) {
		return false
	}
	return utf8.RuneStart(text[c.Start]) && (c.End == len(text) || utf8.RuneStart(text[c.End]))
}

// resolveOverlaps keeps a candidate only when it starts at or after the end of
// the previously kept one. The sort is stable so that, at equal positions, the
// candidate discovered first wins.
func resolveOverlaps(candidates []Suggestion) []Suggestion {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})
	out := make([]Suggestion, 0, len(candidates))
	lastEnd := -1
	for _, c := range candidates {
		if c.Start >= lastEnd {
			out = append(out, c)
			lastEnd = c.End
		}
	}
	return out
}

func toCharOffsets(text string, list []Suggestion) []Suggestion {
	if isASCII(text) {
		return list
	}
	for i := range list {
		list[i].Start = utf8.RuneCountInString(text[:list[i].Start])
		list[i].End = list[i].Start + utf8.RuneCountInString(list[i].Original)
	}
	return list
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
