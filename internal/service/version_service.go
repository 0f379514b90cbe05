package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/metrics"
	"github.com/xxxsen/inkwell/internal/model"
	"github.com/xxxsen/inkwell/internal/pkg/timeutil"
	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/version"
)

type VersionService struct {
	versions  versionStore
	docs      documentStore
	listLimit int
	maxKeep   int
}

func NewVersionService(versions versionStore, docs documentStore, listLimit, maxKeep int) *VersionService {
	return &VersionService{versions: versions, docs: docs, listLimit: listLimit, maxKeep: maxKeep}
}

// CoordinatorFor returns a snapshot coordinator writing versions owned by
// userID.
func (s *VersionService) CoordinatorFor(userID string) *version.Coordinator {
	return version.NewCoordinator(&userVersions{svc: s, userID: userID},
		version.WithObserver(func(_ string, created bool, err error) {
			metrics.ObserveSnapshot(created, err)
		}))
}

// Snapshot records content as a version of docID unless it is blank or
// already stored.
func (s *VersionService) Snapshot(ctx context.Context, userID, docID, content string) (bool, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return false, err
	}
	if strings.TrimSpace(content) == "" {
		return false, nil
	}
	return s.CoordinatorFor(userID).MaybeSnapshot(ctx, docID, content, readability.Score(content))
}

// List returns the newest versions first, at most the configured limit.
func (s *VersionService) List(ctx context.Context, userID, docID string) ([]model.DocumentVersion, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	limit := uint(0)
	if s.listLimit > 0 {
		limit = uint(s.listLimit)
	}
	return s.versions.List(ctx, userID, docID, limit)
}

func (s *VersionService) Get(ctx context.Context, userID, docID, versionID string) (*model.DocumentVersion, error) {
	return s.versions.GetByID(ctx, userID, docID, versionID)
}

// Prune trims every document to the newest maxKeep versions.
func (s *VersionService) Prune(ctx context.Context) (int64, error) {
	if s.maxKeep <= 0 {
		return 0, nil
	}
	ids, err := s.versions.ListOverLimit(ctx, s.maxKeep)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, id := range ids {
		n, err := s.versions.DeleteOldVersions(ctx, id, s.maxKeep)
		if err != nil {
			logutil.GetLogger(ctx).Error("prune versions failed", zap.String("document_id", id), zap.Error(err))
			continue
		}
		total += n
	}
	metrics.AddPruned(total)
	return total, nil
}

type userVersions struct {
	svc    *VersionService
	userID string
}

func (u *userVersions) VersionExists(ctx context.Context, docID, fp string) (bool, error) {
	return u.svc.versions.Exists(ctx, docID, fp)
}

func (u *userVersions) WriteVersion(ctx context.Context, docID, content string, m readability.Metrics, fp string) error {
	return u.svc.versions.Create(ctx, &model.DocumentVersion{
		ID:          newID(),
		UserID:      u.userID,
		DocumentID:  docID,
		Content:     content,
		Metrics:     m,
		ContentHash: fp,
		Ctime:       timeutil.NowUnix(),
	})
}
