// Package version decides whether a document state deserves a new history
// entry. A snapshot is written only when the document has no version with
// the same content fingerprint.
package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/fingerprint"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/readability"
)

// Store is the storage side of the coordinator. WriteVersion reports
// errors.ErrConflict when the fingerprint is already taken.
type Store interface {
	VersionExists(ctx context.Context, docID, fp string) (bool, error)
	WriteVersion(ctx context.Context, docID, content string, metrics readability.Metrics, fp string) error
}

type Observer func(docID string, created bool, err error)

type Coordinator struct {
	store    Store
	observer Observer
}

type Option func(*Coordinator)

func WithObserver(fn Observer) Option {
	return func(c *Coordinator) {
		c.observer = fn
	}
}

func NewCoordinator(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{store: store}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaybeSnapshot stores text as a new version unless an identical one exists.
// A failed existence check is treated as "not found" and the write is tried.
func (c *Coordinator) MaybeSnapshot(ctx context.Context, docID, text string, metrics readability.Metrics) (created bool, err error) {
	defer func() {
		if c.observer != nil {
			c.observer(docID, created, err)
		}
	}()
	fp := fingerprint.Of(text)
	exists, err := c.store.VersionExists(ctx, docID, fp)
	if err != nil {
		logutil.GetLogger(ctx).Warn("version exists check failed, writing anyway",
			zap.String("document_id", docID), zap.String("content_hash", fp), zap.Error(err))
		exists = false
	}
	if exists {
		return false, nil
	}
	if err := c.store.WriteVersion(ctx, docID, text, metrics, fp); err != nil {
		if errors.Is(err, appErr.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("write version: %w", err)
	}
	logutil.GetLogger(ctx).Debug("version created", zap.String("document_id", docID), zap.String("content_hash", fp))
	return true, nil
}
