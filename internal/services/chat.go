package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/carebloom-backend/internal/data/repos"
	errs "github.com/yungbote/carebloom-backend/internal/pkg/errors"
	"github.com/yungbote/carebloom-backend/internal/platform/apierr"
	"github.com/yungbote/carebloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/carebloom-backend/internal/platform/dbctx"
	"github.com/yungbote/carebloom-backend/internal/platform/gemini"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

const (
	ReplyEmptyMessage   = "Please enter a message."
	ReplyNotConfigured  = "AI service not configured properly."
	ReplyInternalError  = "An internal error occurred. Please try again."
	ReplyNoClearAnswer  = "The AI did not provide a clear response. Please try again."
	replyBlockedPrefix  = "Your question was blocked due to safety guidelines: "
	HistoryLoadFailed   = "Could not load history"
	HistoryTimestampFmt = "2006-01-02 15:04:05"
)

const (
	chatTemperature     = 0.6
	chatMaxOutputTokens = 400
	blockThreshold      = "BLOCK_MEDIUM_AND_ABOVE"
)

var chatSafetySettings = []gemini.SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: blockThreshold},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: blockThreshold},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: blockThreshold},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: blockThreshold},
}

// HistoryEntry is one stored exchange as shown to clients.
type HistoryEntry struct {
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Timestamp string `json:"timestamp"`
}

type ChatService interface {
	// HandleChat answers one user message. Errors are *apierr.Error whose
	// Message is the reply to show the caller.
	HandleChat(dbc dbctx.Context, message string) (string, error)
	GetHistory(dbc dbctx.Context) ([]HistoryEntry, error)
	// DeleteHistory removes the record at the given position, or every record
	// when index is nil.
	DeleteHistory(dbc dbctx.Context, index *int) error
}

type chatService struct {
	log     *logger.Logger
	records repos.ChatRecordRepo
	ai      gemini.Generator
	model   string
}

// NewChatService wires the chat pipeline. A nil generator means the AI
// provider is not configured and every chat is answered with a 503.
func NewChatService(baseLog *logger.Logger, records repos.ChatRecordRepo, ai gemini.Generator, model string) ChatService {
	return &chatService{
		log:     baseLog.With("service", "ChatService"),
		records: records,
		ai:      ai,
		model:   strings.TrimSpace(model),
	}
}

func (s *chatService) HandleChat(dbc dbctx.Context, message string) (reply string, err error) {
	log := s.log.With(ctxutil.LogFields(dbc.Ctx)...)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Chat pipeline panicked", "panic", r)
			reply = ""
			err = apierr.New(http.StatusInternalServerError, "internal_error", ReplyInternalError, fmt.Errorf("panic: %v", r))
		}
	}()

	message = strings.TrimSpace(message)
	log.Info("Received chat message", "length", len([]rune(message)))
	if message == "" {
		return "", apierr.New(http.StatusBadRequest, "empty_message", ReplyEmptyMessage, errs.ErrInvalidArgument)
	}
	if s.ai == nil {
		log.Warn("Chat rejected: AI provider not configured")
		return "", apierr.New(http.StatusServiceUnavailable, "ai_not_configured", ReplyNotConfigured, errs.ErrNotConfigured)
	}

	prompt := BuildPrompt(message)
	log.Debug("Sending prompt to Gemini", "prompt_preview", previewPrompt(prompt))

	resp, err := s.ai.Generate(dbc.Ctx, gemini.Request{
		Model:           s.model,
		Prompt:          prompt,
		SafetySettings:  chatSafetySettings,
		Temperature:     chatTemperature,
		MaxOutputTokens: chatMaxOutputTokens,
	})
	if err != nil {
		log.Error("Gemini call failed", "error", err)
		return "", apierr.New(http.StatusInternalServerError, "internal_error", ReplyInternalError, err)
	}
	if resp == nil {
		err := errors.New("gemini returned no response")
		log.Error("Gemini call failed", "error", err)
		return "", apierr.New(http.StatusInternalServerError, "internal_error", ReplyInternalError, err)
	}

	reply = interpretReply(resp)
	log.Debug("Bot reply ready", "blocked", resp.BlockReason != "" && len(resp.Candidates) == 0, "reply_length", len(reply))

	// A failed write never costs the user their answer, and a client that
	// disconnects after generation still gets its exchange recorded.
	if _, saveErr := s.records.Append(dbc.WithoutCancel(), message, reply); saveErr != nil {
		log.Error("Database error when saving chat", "error", saveErr)
	}
	return reply, nil
}

func interpretReply(resp *gemini.Response) string {
	if len(resp.Candidates) > 0 {
		if parts := resp.Candidates[0].Parts; len(parts) > 0 {
			if text := strings.TrimSpace(parts[0]); text != "" {
				return text
			}
		}
		return ReplyNoClearAnswer
	}
	if reason := strings.TrimSpace(resp.BlockReason); reason != "" {
		return replyBlockedPrefix + reason
	}
	return ReplyNoClearAnswer
}

func (s *chatService) GetHistory(dbc dbctx.Context) ([]HistoryEntry, error) {
	rows, err := s.records.ListAll(dbc)
	if err != nil {
		s.log.Error("Error fetching history", append(ctxutil.LogFields(dbc.Ctx), "error", err)...)
		return nil, apierr.New(http.StatusInternalServerError, "history_unavailable", HistoryLoadFailed, err)
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		out = append(out, HistoryEntry{
			User:      r.UserMessage,
			Bot:       r.BotReply,
			Timestamp: r.Timestamp.UTC().Format(HistoryTimestampFmt),
		})
	}
	return out, nil
}

func (s *chatService) DeleteHistory(dbc dbctx.Context, index *int) error {
	log := s.log.With(ctxutil.LogFields(dbc.Ctx)...)
	if index != nil {
		if _, err := s.records.DeleteAt(dbc, *index); err != nil {
			log.Error("Error deleting chat", "index", *index, "error", err)
			return apierr.New(http.StatusInternalServerError, "delete_failed", "error", err)
		}
		log.Info("Deleted chat at index", "index", *index)
		return nil
	}
	n, err := s.records.Clear(dbc)
	if err != nil {
		log.Error("Error clearing chat history", "error", err)
		return apierr.New(http.StatusInternalServerError, "delete_failed", "error", err)
	}
	log.Info("Cleared all chat history", "deleted", n)
	return nil
}
