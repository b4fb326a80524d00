package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/salesagent-backend/internal/chat"
	"github.com/yungbote/salesagent-backend/internal/http/middleware"
	"github.com/yungbote/salesagent-backend/internal/http/response"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
)

type ChatHandler struct {
	chat chat.Service
}

func NewChatHandler(svc chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

// POST /api/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	c.Set(middleware.KeyUserID, req.UserID)

	resp, err := h.chat.HandleMessage(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Set(middleware.KeySessionID, resp.SessionID)
	response.RespondOK(c, resp)
}

// GET /api/chat/sessions/:id?user_id=
func (h *ChatHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.RespondAPIError(c, fmt.Errorf("session id is required: %w", pkgerrors.ErrInvalidArgument))
		return
	}
	c.Set(middleware.KeySessionID, id)

	row, err := h.chat.Session(c.Request.Context(), id, c.Query("user_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": row})
}
