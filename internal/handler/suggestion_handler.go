package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/inkwell/internal/pkg/response"
	"github.com/xxxsen/inkwell/internal/service"
	"github.com/xxxsen/inkwell/internal/suggest"
)

type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

type storeSuggestionsRequest struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

func (h *SuggestionHandler) Store(c *gin.Context) {
	limitBody(c)
	var req storeSuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if err := h.suggestions.Store(c.Request.Context(), getUserID(c), c.Param("id"), req.Suggestions); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(req.Suggestions)})
}

func (h *SuggestionHandler) List(c *gin.Context) {
	list, err := h.suggestions.List(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, list)
}

func (h *SuggestionHandler) Generate(c *gin.Context) {
	res, err := h.suggestions.Generate(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}
