package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/model"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type StatusHandler struct {
	sessions *app.SessionService
}

func NewStatusHandler(sessions *app.SessionService) *StatusHandler {
	return &StatusHandler{sessions: sessions}
}

// Status reports the session's current status record. The UI polls this
// endpoint until the status settles at ready or error.
func (h *StatusHandler) Status(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok || middleware.IsNewSession(c) {
		response.OK(c, model.StatusRecord{Status: model.StatusNoSession})
		return
	}

	rec, err := h.sessions.Status(c.Request.Context(), sid)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read status failed")
		return
	}
	response.OK(c, rec)
}

func (h *StatusHandler) DebugSession(c *gin.Context) {
	sid, _ := middleware.SessionID(c)
	rec, err := h.sessions.Status(c.Request.Context(), sid)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read status failed")
		return
	}
	response.OK(c, gin.H{"sid": sid, "status": rec})
}
