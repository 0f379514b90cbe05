package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/inkwell/internal/model"
	"github.com/xxxsen/inkwell/internal/pkg/response"
	"github.com/xxxsen/inkwell/internal/service"
)

type VersionHandler struct {
	versions *service.VersionService
}

func NewVersionHandler(versions *service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

func (h *VersionHandler) List(c *gin.Context) {
	versions, err := h.versions.List(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]model.DocumentVersionSummary, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.Summary())
	}
	response.Success(c, out)
}

type snapshotRequest struct {
	Content string `json:"content"`
}

func (h *VersionHandler) Create(c *gin.Context) {
	limitBody(c)
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	created, err := h.versions.Snapshot(c.Request.Context(), getUserID(c), c.Param("id"), req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"created": created})
}

func (h *VersionHandler) Get(c *gin.Context) {
	version, err := h.versions.Get(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("version"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}
