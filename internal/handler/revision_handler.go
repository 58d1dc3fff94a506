package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/Crisvalpo/PIPING-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

// RevisionHandler serves the revision register and revision detail.
type RevisionHandler struct {
	revisionSvc *service.RevisionService
	impactSvc   *service.ImpactService
	exportSvc   *service.ExportService
}

// NewRevisionHandler creates a revision handler.
func NewRevisionHandler(
	revisionSvc *service.RevisionService,
	impactSvc *service.ImpactService,
	exportSvc *service.ExportService,
) *RevisionHandler {
	return &RevisionHandler{
		revisionSvc: revisionSvc,
		impactSvc:   impactSvc,
		exportSvc:   exportSvc,
	}
}

// ListRegister returns the project revision register. A listing superseded
// by a newer request aborts through the request context; that is a
// control-flow exit, not a server error.
func (h *RevisionHandler) ListRegister(c *gin.Context) {
	projectID := c.Param("id")
	rows, err := h.revisionSvc.ListProjectRegister(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Abort()
			return
		}
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, rows)
}

// ExportRegister streams the project register as a workbook.
func (h *RevisionHandler) ExportRegister(c *gin.Context) {
	projectID := c.Param("id")
	f, fileName, err := h.exportSvc.ExportRegister(c.Request.Context(), projectID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Abort()
	}
}

// ListRevisions returns every revision of one isometric.
func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	isometricID := c.Param("id")
	withFiles := c.Query("with_files") == "true"
	revs, err := h.revisionSvc.ListRevisions(c.Request.Context(), isometricID, withFiles)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, revs)
}

// GetRevision returns one revision with spools, joints and materials.
func (h *RevisionHandler) GetRevision(c *gin.Context) {
	rev, err := h.revisionSvc.GetRevisionDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Error(c, http.StatusNotFound, "Revisión no encontrada")
			return
		}
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, rev)
}

// EliminateRevision soft-deletes one revision.
func (h *RevisionHandler) EliminateRevision(c *gin.Context) {
	if err := h.revisionSvc.EliminateRevision(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Error(c, http.StatusNotFound, "Revisión no encontrada")
			return
		}
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, nil)
}

// ListRevisionImpacts returns the impacts recorded against one revision.
func (h *RevisionHandler) ListRevisionImpacts(c *gin.Context) {
	impacts, err := h.impactSvc.ListByRevision(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, impacts)
}

// ListIsometricImpacts returns the accumulated impact history of one
// isometric.
func (h *RevisionHandler) ListIsometricImpacts(c *gin.Context) {
	impacts, err := h.impactSvc.ListByIsometric(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, impacts)
}
