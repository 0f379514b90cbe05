package service

import (
	"context"

	"github.com/xxxsen/inkwell/internal/model"
)

type documentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Save(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, userID, docID string, mtime int64) error
	GetByID(ctx context.Context, userID, docID string) (*model.Document, error)
	List(ctx context.Context, userID string, limit, offset uint) ([]model.Document, error)
	ListStaleIDs(ctx context.Context, before int64) ([]string, error)
}

type versionStore interface {
	Create(ctx context.Context, version *model.DocumentVersion) error
	Exists(ctx context.Context, docID, contentHash string) (bool, error)
	List(ctx context.Context, userID, docID string, limit uint) ([]model.DocumentVersion, error)
	GetByID(ctx context.Context, userID, docID, versionID string) (*model.DocumentVersion, error)
	ListOverLimit(ctx context.Context, keep int) ([]string, error)
	DeleteOldVersions(ctx context.Context, docID string, keep int) (int64, error)
}

type suggestionStore interface {
	Replace(ctx context.Context, userID, docID string, items []model.StoredSuggestion) error
	ListByDocument(ctx context.Context, userID, docID string) ([]model.StoredSuggestion, error)
	DeleteByDocumentIDs(ctx context.Context, docIDs []string) (int64, error)
}
