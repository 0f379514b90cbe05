package model

import "github.com/xxxsen/inkwell/internal/readability"

type DocumentVersion struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	DocumentID  string              `json:"document_id"`
	Content     string              `json:"content"`
	Metrics     readability.Metrics `json:"readability"`
	ContentHash string              `json:"content_hash"`
	Ctime       int64               `json:"ctime"`
}

type DocumentVersionSummary struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	ContentHash string `json:"content_hash"`
	WordCount   int    `json:"word_count"`
	Ctime       int64  `json:"ctime"`
}

func (v DocumentVersion) Summary() DocumentVersionSummary {
	return DocumentVersionSummary{
		ID:          v.ID,
		DocumentID:  v.DocumentID,
		ContentHash: v.ContentHash,
		WordCount:   v.Metrics.WordCount,
		Ctime:       v.Ctime,
	}
}
