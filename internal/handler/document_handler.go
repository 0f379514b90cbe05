package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/inkwell/internal/pkg/response"
	"github.com/xxxsen/inkwell/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type documentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	limitBody(c)
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), getUserID(c), service.DocumentInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), getUserID(c), queryUint(c, "limit"), queryUint(c, "offset"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

// Save is the persistence entry point of an editing session: it stores title
// and content and returns the document with recomputed readability.
func (h *DocumentHandler) Save(c *gin.Context) {
	limitBody(c)
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	doc, err := h.documents.Save(c.Request.Context(), getUserID(c), c.Param("id"), service.DocumentInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
