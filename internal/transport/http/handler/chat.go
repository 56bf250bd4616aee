package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/config"
	"docuchat/internal/repository"
	"docuchat/internal/store"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	qa         *app.QAService
	sessions   *app.SessionService
	chatLogs   *repository.ChatLogRepository
	sessionCfg config.SessionConfig
}

type ChatRequest struct {
	Question string `json:"question"`
	Q        string `json:"q"`
}

func NewChatHandler(
	qa *app.QAService,
	sessions *app.SessionService,
	chatLogs *repository.ChatLogRepository,
	sessionCfg config.SessionConfig,
) *ChatHandler {
	return &ChatHandler{qa: qa, sessions: sessions, chatLogs: chatLogs, sessionCfg: sessionCfg}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing session")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	question := req.Question
	if question == "" {
		question = req.Q
	}
	if question == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "question not provided")
		return
	}

	result, err := h.qa.Answer(c.Request.Context(), sid, question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNotReady):
			response.Error(c, http.StatusConflict, response.CodeNotReady, "index is not ready, please wait")
		case errors.Is(err, app.ErrTokenLimit):
			middleware.ClearSessionCookie(c, h.sessionCfg)
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTokenLimit, "token limit reached, session reset")
		case errors.Is(err, store.ErrNotFound):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "index unavailable for this session")
		case errors.Is(err, ai.ErrProviderTimeout):
			response.Error(c, http.StatusGatewayTimeout, response.CodeProviderError, "model provider timed out")
		case errors.Is(err, ai.ErrProvider):
			response.Error(c, http.StatusBadGateway, response.CodeProviderError, "model provider request failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to generate answer")
		}
		return
	}

	if result.Reset {
		middleware.ClearSessionCookie(c, h.sessionCfg)
	}
	response.OK(c, result)
}

// Reset wipes the session's documents, index and status on request.
func (h *ChatHandler) Reset(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing session")
		return
	}
	if err := h.sessions.Reset(c.Request.Context(), sid); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reset failed")
		return
	}
	middleware.ClearSessionCookie(c, h.sessionCfg)
	response.OK(c, gin.H{"reset": true})
}

func (h *ChatHandler) History(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing session")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.chatLogs.ListBySessionID(sid, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}
	response.OK(c, entries)
}
