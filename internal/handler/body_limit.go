package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds request bodies. It fits a document at the character
// limit in multi-byte UTF-8 plus JSON escaping.
const maxBodyBytes = 8 * 1024 * 1024

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
}

func formatBodyLimit(bytes int64) string {
	const mb = 1024 * 1024
	if bytes <= 0 {
		return "0MB"
	}
	value := bytes / mb
	if value <= 0 {
		value = 1
	}
	return strconv.FormatInt(value, 10) + "MB"
}
