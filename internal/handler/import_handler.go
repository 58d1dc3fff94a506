package handler

import (
	"net/http"

	"github.com/Crisvalpo/PIPING-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

// ImportHandler serves the two import flows: bulk revision announcements and
// single-document SpoolGen datasets. Both accept parsed JSON rows or an
// uploaded workbook.
type ImportHandler struct {
	announcementSvc *service.AnnouncementService
	spoolGenSvc     *service.SpoolGenService
}

// NewImportHandler creates an import handler.
func NewImportHandler(announcementSvc *service.AnnouncementService, spoolGenSvc *service.SpoolGenService) *ImportHandler {
	return &ImportHandler{
		announcementSvc: announcementSvc,
		spoolGenSvc:     spoolGenSvc,
	}
}

// announcementRequest carries raw announcement records as the client parsed
// them; column labels are normalized server-side.
type announcementRequest struct {
	Rows []map[string]interface{} `json:"rows" binding:"required"`
}

// ImportAnnouncement ingests an announcement batch for one project. The
// importer result is rendered as-is: partial failures are data, not an HTTP
// error.
func (h *ImportHandler) ImportAnnouncement(c *gin.Context) {
	projectID := c.Param("id")

	rows, ok := h.announcementRows(c)
	if !ok {
		return
	}
	result := h.announcementSvc.Import(c.Request.Context(), projectID, currentUserID(c), rows)
	Success(c, result)
}

func (h *ImportHandler) announcementRows(c *gin.Context) ([]service.AnnouncementRow, bool) {
	if file, err := c.FormFile("file"); err == nil {
		reader, err := file.Open()
		if err != nil {
			Error(c, http.StatusBadRequest, "No se pudo leer el archivo")
			return nil, false
		}
		defer reader.Close()
		rows, err := service.ParseAnnouncementWorkbook(reader)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error())
			return nil, false
		}
		return rows, true
	}

	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return service.NormalizeAnnouncementRows(req.Rows), true
}

// ImportSpoolGen ingests one document's fabrication dataset. Precondition
// failures come back inside the result body with Success=false.
func (h *ImportHandler) ImportSpoolGen(c *gin.Context) {
	projectID := c.Param("id")

	input, ok := h.spoolGenInput(c)
	if !ok {
		return
	}
	result, err := h.spoolGenSvc.Import(c.Request.Context(), projectID, currentUserID(c), input)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, result)
}

func (h *ImportHandler) spoolGenInput(c *gin.Context) (*service.SpoolGenInput, bool) {
	if file, err := c.FormFile("file"); err == nil {
		isoNumber := c.PostForm("iso_number")
		revisionNumber := c.PostForm("revision_number")
		if isoNumber == "" || revisionNumber == "" {
			Error(c, http.StatusBadRequest, "iso_number y revision_number son requeridos")
			return nil, false
		}
		reader, err := file.Open()
		if err != nil {
			Error(c, http.StatusBadRequest, "No se pudo leer el archivo")
			return nil, false
		}
		defer reader.Close()
		welds, bolts, materials, err := service.ParseSpoolGenWorkbook(reader)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error())
			return nil, false
		}
		return &service.SpoolGenInput{
			IsoNumber:      isoNumber,
			RevisionNumber: revisionNumber,
			Welds:          welds,
			Bolts:          bolts,
			Materials:      materials,
		}, true
	}

	var input service.SpoolGenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if input.IsoNumber == "" || input.RevisionNumber == "" {
		Error(c, http.StatusBadRequest, "iso_number y revision_number son requeridos")
		return nil, false
	}
	return &input, true
}
