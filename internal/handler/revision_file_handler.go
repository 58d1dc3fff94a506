package handler

import (
	"errors"
	"net/http"

	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/Crisvalpo/PIPING-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

// RevisionFileHandler serves versioned binary attachments of revisions.
type RevisionFileHandler struct {
	fileSvc *service.RevisionFileService
}

// NewRevisionFileHandler creates a revision file handler.
func NewRevisionFileHandler(fileSvc *service.RevisionFileService) *RevisionFileHandler {
	return &RevisionFileHandler{fileSvc: fileSvc}
}

// Upload stores one attachment version against a revision. Multipart form:
// file, file_type, is_primary.
func (h *RevisionFileHandler) Upload(c *gin.Context) {
	revisionID := c.Param("id")
	fileType := c.PostForm("file_type")
	isPrimary := c.PostForm("is_primary") == "true"

	fileHeader, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "Archivo requerido")
		return
	}
	reader, err := fileHeader.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, "No se pudo leer el archivo")
		return
	}
	defer reader.Close()

	result, err := h.fileSvc.Upload(
		c.Request.Context(),
		revisionID,
		fileType,
		fileHeader.Filename,
		currentUserID(c),
		reader,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		isPrimary,
	)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Success {
		Error(c, http.StatusBadRequest, result.Message)
		return
	}
	Created(c, result)
}

// List returns the files of one revision, each with a fresh signed URL.
func (h *RevisionFileHandler) List(c *gin.Context) {
	views, err := h.fileSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, views)
}

// Link mints a short-lived download URL for one file.
func (h *RevisionFileHandler) Link(c *gin.Context) {
	url, err := h.fileSvc.Link(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Error(c, http.StatusNotFound, "Archivo no encontrado")
			return
		}
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, gin.H{"url": url})
}
