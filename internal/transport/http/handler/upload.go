package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/splitter"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type UploadHandler struct {
	indexing *app.IndexingService
}

func NewUploadHandler(indexing *app.IndexingService) *UploadHandler {
	return &UploadHandler{indexing: indexing}
}

// Upload accepts a multipart PDF, runs the indexing pipeline for the
// session and reports the settled status. Indexing failures are recorded in
// the session's status record; the client polls /status either way.
func (h *UploadHandler) Upload(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing session")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.indexing.Index(c.Request.Context(), sid, file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, splitter.ErrEmptyDocument), errors.Is(err, app.ErrExtraction):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to process the PDF")
		}
		return
	}

	response.OK(c, gin.H{
		"status":  "ready",
		"pdf_key": result.PDFKey,
		"chunks":  result.ChunkCount,
	})
}
