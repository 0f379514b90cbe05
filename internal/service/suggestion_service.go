package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/xxxsen/inkwell/internal/metrics"
	"github.com/xxxsen/inkwell/internal/model"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/pkg/timeutil"
	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/suggest"
)

type SuggestionService struct {
	engine suggest.Suggester
	store  suggestionStore
	docs   documentStore
}

func NewSuggestionService(engine suggest.Suggester, store suggestionStore, docs documentStore) *SuggestionService {
	return &SuggestionService{engine: engine, store: store, docs: docs}
}

type SuggestionsResult struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Stats       suggest.Stats        `json:"stats"`
}

type ReadabilityResult struct {
	Metrics         readability.Metrics `json:"metrics"`
	Recommendations []string            `json:"recommendations"`
}

func (s *SuggestionService) Engine() suggest.Suggester {
	return s.engine
}

func (s *SuggestionService) Analyze(text string) SuggestionsResult {
	start := time.Now()
	list := s.engine.Suggest(text)
	categories := make([]string, 0, len(list))
	for _, item := range list {
		categories = append(categories, string(item.Category))
	}
	metrics.ObserveSuggestions(time.Since(start), categories)
	return SuggestionsResult{Suggestions: list, Stats: suggest.ComputeStats(text, list)}
}

func (s *SuggestionService) Readability(text string, markdown bool) ReadabilityResult {
	m := readability.Score(text)
	if markdown {
		m = readability.ScoreMarkdown(text)
	}
	return ReadabilityResult{Metrics: m, Recommendations: readability.Recommendations(m)}
}

// Generate computes suggestions for the stored content of docID and mirrors
// them to storage.
func (s *SuggestionService) Generate(ctx context.Context, userID, docID string) (SuggestionsResult, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return SuggestionsResult{}, err
	}
	res := s.Analyze(doc.Content)
	if err := s.Store(ctx, userID, docID, res.Suggestions); err != nil {
		return SuggestionsResult{}, err
	}
	return res, nil
}

// Store replaces the mirrored suggestions of docID with list.
func (s *SuggestionService) Store(ctx context.Context, userID, docID string, list []suggest.Suggestion) error {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	content := []rune(doc.Content)
	now := timeutil.NowUnix()
	items := make([]model.StoredSuggestion, 0, len(list))
	for i, item := range list {
		if err := validateSuggestion(item, content); err != nil {
			return fmt.Errorf("%w: suggestion %d: %s", appErr.ErrInvalid, i, err.Error())
		}
		items = append(items, model.StoredSuggestion{
			ID:            newID(),
			UserID:        userID,
			DocumentID:    docID,
			StartIndex:    item.Start,
			EndIndex:      item.End,
			Type:          string(item.Category),
			OriginalText:  item.Original,
			SuggestedText: item.Replacement,
			Message:       item.Message,
			Ctime:         now,
		})
	}
	return s.store.Replace(ctx, userID, docID, items)
}

func validateSuggestion(item suggest.Suggestion, content []rune) error {
	length := len(content)
	return validation.ValidateStruct(&item,
		validation.Field(&item.Start, validation.Min(0), validation.Max(length)),
		validation.Field(&item.End, validation.Min(item.Start+1), validation.Max(length)),
		validation.Field(&item.Category, validation.Required, validation.In(
			suggest.CategoryGrammar, suggest.CategorySpelling, suggest.CategoryStyle)),
		validation.Field(&item.Original, validation.By(matchesSpan(content, item.Start, item.End))),
		validation.Field(&item.Message, validation.Length(0, 1000)),
	)
}

var errSpanMismatch = errors.New("does not match the text at the given range")

// matchesSpan checks that the original text is the content between start and
// end. Out of range spans are reported by the offset rules.
func matchesSpan(content []rune, start, end int) validation.RuleFunc {
	return func(value interface{}) error {
		if start < 0 || end > len(content) || start >= end {
			return nil
		}
		if value.(string) != string(content[start:end]) {
			return errSpanMismatch
		}
		return nil
	}
}

func (s *SuggestionService) List(ctx context.Context, userID, docID string) ([]suggest.Suggestion, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	items, err := s.store.ListByDocument(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	out := make([]suggest.Suggestion, 0, len(items))
	for _, item := range items {
		out = append(out, item.Suggestion())
	}
	return out, nil
}

// CleanupStale drops mirrored suggestions of documents untouched since before.
func (s *SuggestionService) CleanupStale(ctx context.Context, before int64) (int64, error) {
	ids, err := s.docs.ListStaleIDs(ctx, before)
	if err != nil {
		return 0, err
	}
	return s.store.DeleteByDocumentIDs(ctx, ids)
}
