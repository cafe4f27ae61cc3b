package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/carebloom-backend/internal/http/response"
	"github.com/yungbote/carebloom-backend/internal/platform/apierr"
	"github.com/yungbote/carebloom-backend/internal/platform/dbctx"
	"github.com/yungbote/carebloom-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type historyResponse struct {
	History []services.HistoryEntry `json:"history"`
	Error   string                  `json:"error,omitempty"`
}

// POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	message, err := parseChatBody(c)
	if err != nil {
		_ = c.Error(err)
		response.RespondReply(c, bodyErrStatus(err), services.ReplyInternalError)
		return
	}
	reply, err := h.chat.HandleChat(dbctx.Context{Ctx: c.Request.Context()}, message)
	if err != nil {
		ae := apierr.From(err, services.ReplyInternalError)
		_ = c.Error(err)
		response.RespondReply(c, ae.Status, ae.Message)
		return
	}
	response.RespondReply(c, http.StatusOK, reply)
}

// GET /history
func (h *ChatHandler) History(c *gin.Context) {
	entries, err := h.chat.GetHistory(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, historyResponse{
			History: []services.HistoryEntry{},
			Error:   services.HistoryLoadFailed,
		})
		return
	}
	response.RespondOK(c, historyResponse{History: entries})
}

// POST /delete
func (h *ChatHandler) Delete(c *gin.Context) {
	index, err := parseDeleteBody(c)
	if err != nil {
		_ = c.Error(err)
		response.RespondStatus(c, bodyErrStatus(err), response.StatusError)
		return
	}
	if err := h.chat.DeleteHistory(dbctx.Context{Ctx: c.Request.Context()}, index); err != nil {
		_ = c.Error(err)
		response.RespondStatus(c, http.StatusInternalServerError, response.StatusError)
		return
	}
	response.RespondStatus(c, http.StatusOK, response.StatusSuccess)
}

// MaxBodyBytes caps the JSON bodies of /chat and /delete.
const MaxBodyBytes = 64 << 10

var errBadBody = errors.New("malformed request body")

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	return c.GetRawData()
}

func bodyErrStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// parseChatBody requires a JSON object. A missing "message" key reads as the
// empty message; a present key must hold a string.
func parseChatBody(c *gin.Context) (string, error) {
	raw, err := readBody(c)
	if err != nil {
		return "", fmt.Errorf("read chat body: %w", err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("%w: %v", errBadBody, err)
	}
	if body == nil {
		return "", fmt.Errorf("%w: expected a JSON object", errBadBody)
	}
	field, ok := body["message"]
	if !ok {
		return "", nil
	}
	var msg *string
	if err := json.Unmarshal(field, &msg); err != nil || msg == nil {
		return "", fmt.Errorf("%w: message must be a string", errBadBody)
	}
	return *msg, nil
}

// parseDeleteBody returns nil when the body is empty or has no "index" key,
// which means clear everything.
func parseDeleteBody(c *gin.Context) (*int, error) {
	raw, err := readBody(c)
	if err != nil {
		return nil, fmt.Errorf("read delete body: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	field, ok := body["index"]
	if !ok {
		return nil, nil
	}
	var index *int
	if err := json.Unmarshal(field, &index); err != nil || index == nil {
		return nil, fmt.Errorf("%w: index must be an integer", errBadBody)
	}
	return index, nil
}
