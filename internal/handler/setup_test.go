package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/inkwell/internal/handler"
	"github.com/xxxsen/inkwell/internal/middleware"
	"github.com/xxxsen/inkwell/internal/pkg/jwt"
	"github.com/xxxsen/inkwell/internal/service"
	"github.com/xxxsen/inkwell/internal/suggest"
	"github.com/xxxsen/inkwell/internal/testutil"
)

var testSecret = []byte("test-secret")

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs := testutil.NewMemDocuments()
	documentService := service.NewDocumentService(docs)
	versionService := service.NewVersionService(&testutil.MemVersions{}, docs, 50, 0)
	suggestionService := service.NewSuggestionService(suggest.NewDefault(suggest.Options{}), testutil.NewMemSuggestions(), docs)

	deps := handler.RouterDeps{
		Documents:   handler.NewDocumentHandler(documentService),
		Versions:    handler.NewVersionHandler(versionService),
		Suggestions: handler.NewSuggestionHandler(suggestionService),
		Analyze:     handler.NewAnalyzeHandler(suggestionService),
		JWTSecret:   testSecret,
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return engine
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func call(t *testing.T, router http.Handler, method, path, token string, body interface{}) envelope {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	var out envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.Equal(t, 0, env.Code, env.Msg)
	require.NoError(t, json.Unmarshal(env.Data, v))
}
