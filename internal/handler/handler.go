package handler

import (
	"net/http"

	"github.com/Crisvalpo/PIPING-sub001/internal/config"
	"github.com/Crisvalpo/PIPING-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the engineering module.
type Handlers struct {
	Revision     *RevisionHandler
	Import       *ImportHandler
	RevisionFile *RevisionFileHandler
}

// NewHandlers wires the handlers onto the services.
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Revision:     NewRevisionHandler(svc.Revision, svc.Impact, svc.Export),
		Import:       NewImportHandler(svc.Announcement, svc.SpoolGen),
		RevisionFile: NewRevisionFileHandler(svc.RevisionFile),
	}
}

// Response is the JSON envelope of every endpoint.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope with the given HTTP status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}

// currentUserID reads the authenticated user id set by the JWT middleware.
func currentUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
