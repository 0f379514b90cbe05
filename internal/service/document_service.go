package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/model"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/pkg/timeutil"
	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/repo"
	"github.com/xxxsen/inkwell/internal/session"
)

const (
	maxTitleLength   = 200
	maxContentLength = 1 << 20
)

type DocumentService struct {
	docs documentStore
}

func NewDocumentService(docs documentStore) *DocumentService {
	return &DocumentService{docs: docs}
}

type DocumentInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in *DocumentInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = session.UntitledDocument
	}
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Content, validation.Length(0, maxContentLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", appErr.ErrInvalid, err.Error())
	}
	return nil
}

func (s *DocumentService) Create(ctx context.Context, userID string, in DocumentInput) (*model.Document, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:      newID(),
		UserID:  userID,
		Title:   in.Title,
		Content: in.Content,
		Metrics: readability.Score(in.Content),
		State:   repo.DocumentStateNormal,
		Ctime:   now,
		Mtime:   now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("document created", zap.String("user_id", userID), zap.String("document_id", doc.ID))
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

func (s *DocumentService) List(ctx context.Context, userID string, limit, offset uint) ([]model.DocumentSummary, error) {
	docs, err := s.docs.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocumentSummary{
			ID:        d.ID,
			Title:     d.Title,
			WordCount: d.Metrics.WordCount,
			Level:     d.Metrics.ReadabilityLevel,
			Ease:      d.Metrics.FleschReadingEase,
			Mtime:     d.Mtime,
		})
	}
	return out, nil
}

// Save replaces title and content. Metrics are always recomputed from the
// stored content.
func (s *DocumentService) Save(ctx context.Context, userID, docID string, in DocumentInput) (*model.Document, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	doc := &model.Document{
		ID:      docID,
		UserID:  userID,
		Title:   in.Title,
		Content: in.Content,
		Metrics: readability.Score(in.Content),
		Mtime:   timeutil.NowUnix(),
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return s.docs.GetByID(ctx, userID, docID)
}

func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	return s.docs.Delete(ctx, userID, docID, timeutil.NowUnix())
}

// ForUser exposes the documents of userID to an editing session.
func (s *DocumentService) ForUser(userID string) *UserDocuments {
	return &UserDocuments{svc: s, userID: userID}
}

type UserDocuments struct {
	svc    *DocumentService
	userID string
}

func (u *UserDocuments) FetchDocument(ctx context.Context, docID string) (*session.Snapshot, error) {
	doc, err := u.svc.Get(ctx, u.userID, docID)
	if err != nil {
		return nil, err
	}
	return &session.Snapshot{Title: doc.Title, Content: doc.Content, Metrics: doc.Metrics}, nil
}

func (u *UserDocuments) PersistDocument(ctx context.Context, docID string, in session.PersistInput) (*session.PersistResult, error) {
	doc, err := u.svc.Save(ctx, u.userID, docID, DocumentInput{Title: in.Title, Content: in.Content})
	if err != nil {
		return nil, err
	}
	return &session.PersistResult{
		Title:   doc.Title,
		Content: doc.Content,
		Metrics: doc.Metrics,
		SavedAt: time.Unix(doc.Mtime, 0),
	}, nil
}
