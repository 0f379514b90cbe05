package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/inkwell/internal/model"
	"github.com/xxxsen/inkwell/internal/pkg/errcode"
	"github.com/xxxsen/inkwell/internal/service"
	"github.com/xxxsen/inkwell/internal/suggest"
)

func TestDocumentsRequireToken(t *testing.T) {
	router := setupRouter(t)
	res := call(t, router, http.MethodPost, "/api/v1/documents", "", map[string]string{"title": "t", "content": "c"})
	require.Equal(t, errcode.ErrUnauthorized, res.Code)

	res = call(t, router, http.MethodGet, "/api/v1/documents", "garbage", nil)
	require.Equal(t, errcode.ErrUnauthorized, res.Code)
}

func TestDocumentLifecycle(t *testing.T) {
	router := setupRouter(t)
	token := tokenFor(t, "u1")

	var doc model.Document
	decode(t, call(t, router, http.MethodPost, "/api/v1/documents", token,
		map[string]string{"title": "", "content": "The cat sat on the mat."}), &doc)
	require.NotEmpty(t, doc.ID)
	require.Equal(t, "Untitled Document", doc.Title)
	require.Equal(t, 6, doc.Metrics.WordCount)

	var saved model.Document
	decode(t, call(t, router, http.MethodPut, "/api/v1/documents/"+doc.ID, token,
		map[string]string{"title": "Notes", "content": "The cat sat. The dog ran."}), &saved)
	require.Equal(t, "Notes", saved.Title)
	require.Equal(t, 2, saved.Metrics.SentenceCount)

	var list []model.DocumentSummary
	decode(t, call(t, router, http.MethodGet, "/api/v1/documents?limit=10", token, nil), &list)
	require.Len(t, list, 1)

	other := tokenFor(t, "u2")
	res := call(t, router, http.MethodGet, "/api/v1/documents/"+doc.ID, other, nil)
	require.Equal(t, errcode.ErrNotFound, res.Code)

	res = call(t, router, http.MethodDelete, "/api/v1/documents/"+doc.ID, token, nil)
	require.Equal(t, 0, res.Code)
	res = call(t, router, http.MethodGet, "/api/v1/documents/"+doc.ID, token, nil)
	require.Equal(t, errcode.ErrNotFound, res.Code)
}

func TestVersionSnapshotDeduplicates(t *testing.T) {
	router := setupRouter(t)
	token := tokenFor(t, "u1")

	var doc model.Document
	decode(t, call(t, router, http.MethodPost, "/api/v1/documents", token,
		map[string]string{"title": "v", "content": "draft"}), &doc)

	path := "/api/v1/documents/" + doc.ID + "/versions"
	var created struct {
		Created bool `json:"created"`
	}
	decode(t, call(t, router, http.MethodPost, path, token, map[string]string{"content": "first draft"}), &created)
	require.True(t, created.Created)
	decode(t, call(t, router, http.MethodPost, path, token, map[string]string{"content": "first draft"}), &created)
	require.False(t, created.Created)
	decode(t, call(t, router, http.MethodPost, path, token, map[string]string{"content": "   "}), &created)
	require.False(t, created.Created)

	var versions []model.DocumentVersionSummary
	decode(t, call(t, router, http.MethodGet, path, token, nil), &versions)
	require.Len(t, versions, 1)
	require.Equal(t, 2, versions[0].WordCount)

	var version model.DocumentVersion
	decode(t, call(t, router, http.MethodGet, path+"/"+versions[0].ID, token, nil), &version)
	require.Equal(t, "first draft", version.Content)

	res := call(t, router, http.MethodGet, path+"/missing", token, nil)
	require.Equal(t, errcode.ErrNotFound, res.Code)
}

func TestSuggestionRoutes(t *testing.T) {
	router := setupRouter(t)
	token := tokenFor(t, "u1")

	var doc model.Document
	decode(t, call(t, router, http.MethodPost, "/api/v1/documents", token,
		map[string]string{"title": "s", "content": "I recieve mail."}), &doc)
	base := "/api/v1/documents/" + doc.ID + "/suggestions"

	var generated service.SuggestionsResult
	decode(t, call(t, router, http.MethodPost, base+"/generate", token, nil), &generated)
	require.NotEmpty(t, generated.Suggestions)
	require.Equal(t, "recieve", generated.Suggestions[0].Original)
	require.Equal(t, "receive", generated.Suggestions[0].Replacement)

	var listed []suggest.Suggestion
	decode(t, call(t, router, http.MethodGet, base, token, nil), &listed)
	require.Equal(t, generated.Suggestions, listed)

	res := call(t, router, http.MethodPost, base, token, map[string]interface{}{
		"suggestions": []map[string]interface{}{
			{"startIndex": 5, "endIndex": 99, "type": "spelling", "suggestedText": "x"},
		},
	})
	require.Equal(t, errcode.ErrInvalid, res.Code)

	res = call(t, router, http.MethodPost, base, token, map[string]interface{}{
		"suggestions": []map[string]interface{}{
			{"startIndex": 2, "endIndex": 9, "type": "spelling", "originalText": "receive", "suggestedText": "receive"},
		},
	})
	require.Equal(t, errcode.ErrInvalid, res.Code)

	res = call(t, router, http.MethodPost, base, token, map[string]interface{}{
		"suggestions": []map[string]interface{}{
			{"startIndex": 2, "endIndex": 9, "type": "spelling", "originalText": "recieve", "suggestedText": "receive"},
		},
	})
	require.Equal(t, 0, res.Code, res.Msg)
}

func TestAnalyzeRoutes(t *testing.T) {
	router := setupRouter(t)
	token := tokenFor(t, "u1")

	var scored service.ReadabilityResult
	decode(t, call(t, router, http.MethodPost, "/api/v1/analyze/readability", token,
		map[string]interface{}{"text": "# Title\n\nThe cat sat.", "markdown": true}), &scored)
	require.Equal(t, 4, scored.Metrics.WordCount)
	require.NotEmpty(t, scored.Recommendations)

	var checked service.SuggestionsResult
	decode(t, call(t, router, http.MethodPost, "/api/v1/analyze/suggestions", token,
		map[string]string{"text": ""}), &checked)
	require.Empty(t, checked.Suggestions)
	require.Equal(t, 0, checked.Stats.TotalIssues)
}
