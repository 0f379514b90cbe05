package model

import "github.com/xxxsen/inkwell/internal/readability"

type Document struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Metrics readability.Metrics `json:"readability"`
	State   int                 `json:"state"`
	Ctime   int64               `json:"ctime"`
	Mtime   int64               `json:"mtime"`
}

// DocumentSummary is a list row, without the content.
type DocumentSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	WordCount int     `json:"word_count"`
	Level     string  `json:"readability_level"`
	Ease      float64 `json:"flesch_reading_ease"`
	Mtime     int64   `json:"mtime"`
}
