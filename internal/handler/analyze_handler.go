package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/inkwell/internal/pkg/response"
	"github.com/xxxsen/inkwell/internal/service"
)

// AnalyzeHandler scores and checks ad hoc text that is not stored.
type AnalyzeHandler struct {
	suggestions *service.SuggestionService
}

func NewAnalyzeHandler(suggestions *service.SuggestionService) *AnalyzeHandler {
	return &AnalyzeHandler{suggestions: suggestions}
}

type analyzeRequest struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
}

func (h *AnalyzeHandler) Readability(c *gin.Context) {
	limitBody(c)
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	response.Success(c, h.suggestions.Readability(req.Text, req.Markdown))
}

func (h *AnalyzeHandler) Suggestions(c *gin.Context) {
	limitBody(c)
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	response.Success(c, h.suggestions.Analyze(req.Text))
}
