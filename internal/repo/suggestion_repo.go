package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/inkwell/internal/model"
	"github.com/xxxsen/inkwell/internal/pkg/dbutil"
)

type SuggestionRepo struct {
	db *sql.DB
}

func NewSuggestionRepo(db *sql.DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

// Replace swaps the stored suggestions of a document for items in a single
// transaction.
func (r *SuggestionRepo) Replace(ctx context.Context, userID, docID string, items []model.StoredSuggestion) error {
	return dbutil.InTx(ctx, r.db, func(tx *sql.Tx) error {
		sqlStr, args, err := builder.BuildDelete("suggestions", map[string]interface{}{
			"user_id":     userID,
			"document_id": docID,
		})
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("clear suggestions: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		data := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			data = append(data, map[string]interface{}{
				"id":             item.ID,
				"user_id":        userID,
				"document_id":    docID,
				"start_index":    item.StartIndex,
				"end_index":      item.EndIndex,
				"type":           item.Type,
				"original_text":  item.OriginalText,
				"suggested_text": item.SuggestedText,
				"message":        item.Message,
				"ctime":          item.Ctime,
			})
		}
		sqlStr, args, err = builder.BuildInsert("suggestions", data)
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert suggestions: %w", err)
		}
		return nil
	})
}

func (r *SuggestionRepo) ListByDocument(ctx context.Context, userID, docID string) ([]model.StoredSuggestion, error) {
	where := map[string]interface{}{
		"user_id":     userID,
		"document_id": docID,
		"_orderby":    "start_index asc",
	}
	sqlStr, args, err := builder.BuildSelect("suggestions", where, []string{
		"id", "user_id", "document_id", "start_index", "end_index", "type",
		"original_text", "suggested_text", "message", "ctime",
	})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.StoredSuggestion, 0)
	for rows.Next() {
		var s model.StoredSuggestion
		if err := rows.Scan(&s.ID, &s.UserID, &s.DocumentID, &s.StartIndex, &s.EndIndex, &s.Type,
			&s.OriginalText, &s.SuggestedText, &s.Message, &s.Ctime); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *SuggestionRepo) DeleteByDocumentIDs(ctx context.Context, docIDs []string) (int64, error) {
	if len(docIDs) == 0 {
		return 0, nil
	}
	sqlStr, args, err := sqlx.In("DELETE FROM suggestions WHERE document_id IN (?)", docIDs)
	if err != nil {
		return 0, err
	}
	sqlStr = sqlx.Rebind(sqlx.DOLLAR, sqlStr)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
