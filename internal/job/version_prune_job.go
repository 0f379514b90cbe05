package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type versionPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// VersionPruneJob keeps every document at its newest versions.max_keep
// snapshots.
type VersionPruneJob struct {
	versions versionPruner
}

func NewVersionPruneJob(versions versionPruner) *VersionPruneJob {
	return &VersionPruneJob{versions: versions}
}

func (j *VersionPruneJob) Name() string {
	return "version_prune"
}

func (j *VersionPruneJob) Run(ctx context.Context) error {
	if j.versions == nil {
		return nil
	}
	n, err := j.versions.Prune(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logutil.GetLogger(ctx).Info("old versions pruned", zap.Int64("count", n))
	}
	return nil
}
