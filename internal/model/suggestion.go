package model

import "github.com/xxxsen/inkwell/internal/suggest"

type StoredSuggestion struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	DocumentID    string `json:"document_id"`
	StartIndex    int    `json:"start_index"`
	EndIndex      int    `json:"end_index"`
	Type          string `json:"type"`
	OriginalText  string `json:"original_text"`
	SuggestedText string `json:"suggested_text"`
	Message       string `json:"message"`
	Ctime         int64  `json:"ctime"`
}

func (s StoredSuggestion) Suggestion() suggest.Suggestion {
	return suggest.Suggestion{
		Start:       s.StartIndex,
		End:         s.EndIndex,
		Category:    suggest.Category(s.Type),
		Original:    s.OriginalText,
		Replacement: s.SuggestedText,
		Message:     s.Message,
	}
}
