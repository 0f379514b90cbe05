package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/pkg/timeutil"
)

type staleCleaner interface {
	CleanupStale(ctx context.Context, before int64) (int64, error)
}

type SuggestionCleanupJob struct {
	suggestions staleCleaner
	staleDays   int
	now         func() time.Time
}

func NewSuggestionCleanupJob(suggestions staleCleaner, staleDays int) *SuggestionCleanupJob {
	return &SuggestionCleanupJob{
		suggestions: suggestions,
		staleDays:   staleDays,
		now:         time.Now,
	}
}

func (j *SuggestionCleanupJob) Name() string {
	return "suggestion_cleanup"
}

// Run drops mirrored suggestions of documents not modified within staleDays.
func (j *SuggestionCleanupJob) Run(ctx context.Context) error {
	if j.suggestions == nil {
		return nil
	}
	days := j.staleDays
	if days <= 0 {
		days = 30
	}
	cutoff := timeutil.DaysAgoUnix(j.now(), days)
	n, err := j.suggestions.CleanupStale(ctx, cutoff)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("stale suggestions removed", zap.Int64("count", n), zap.Int64("cutoff", cutoff))
	return nil
}
