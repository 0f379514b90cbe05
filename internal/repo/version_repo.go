package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/inkwell/internal/model"
	"github.com/xxxsen/inkwell/internal/pkg/dbutil"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
)

var versionColumns = []string{"id", "user_id", "document_id", "content", "metrics", "content_hash", "ctime"}

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

// Create returns ErrConflict when the document already has a version with the
// same content hash.
func (r *VersionRepo) Create(ctx context.Context, version *model.DocumentVersion) error {
	metrics, err := encodeMetrics(version.Metrics)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":           version.ID,
		"user_id":      version.UserID,
		"document_id":  version.DocumentID,
		"content":      version.Content,
		"metrics":      metrics,
		"content_hash": version.ContentHash,
		"ctime":        version.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("document_versions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *VersionRepo) Exists(ctx context.Context, docID, contentHash string) (bool, error) {
	where := map[string]interface{}{
		"document_id":  docID,
		"content_hash": contentHash,
		"_limit":       []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("document_versions", where, []string{"id"})
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Next(), rows.Err()
}

func (r *VersionRepo) List(ctx context.Context, userID, docID string, limit uint) ([]model.DocumentVersion, error) {
	where := map[string]interface{}{
		"user_id":     userID,
		"document_id": docID,
		"_orderby":    "ctime desc, id desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	return r.query(ctx, where)
}

func (r *VersionRepo) GetByID(ctx context.Context, userID, docID, versionID string) (*model.DocumentVersion, error) {
	where := map[string]interface{}{
		"id":          versionID,
		"user_id":     userID,
		"document_id": docID,
	}
	versions, err := r.query(ctx, where)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &versions[0], nil
}

// ListOverLimit returns documents holding more than keep versions.
func (r *VersionRepo) ListOverLimit(ctx context.Context, keep int) ([]string, error) {
	sqlStr := `
		SELECT document_id
		FROM document_versions
		GROUP BY document_id
		HAVING COUNT(1) > $1
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, keep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *VersionRepo) DeleteOldVersions(ctx context.Context, docID string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	sqlStr := `
		DELETE FROM document_versions
		WHERE document_id = $1
		  AND id NOT IN (
			SELECT id
			FROM document_versions
			WHERE document_id = $2
			ORDER BY ctime DESC, id DESC
			LIMIT $3
		  )
	`
	result, err := r.db.ExecContext(ctx, sqlStr, docID, docID, keep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *VersionRepo) query(ctx context.Context, where map[string]interface{}) ([]model.DocumentVersion, error) {
	sqlStr, args, err := builder.BuildSelect("document_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var v model.DocumentVersion
		var metrics []byte
		if err := rows.Scan(&v.ID, &v.UserID, &v.DocumentID, &v.Content, &metrics, &v.ContentHash, &v.Ctime); err != nil {
			return nil, err
		}
		if err := decodeMetrics(metrics, &v.Metrics); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

