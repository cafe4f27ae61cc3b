package app

import (
	"context"

	"github.com/yungbote/carebloom-backend/internal/platform/gemini"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
	"github.com/yungbote/carebloom-backend/internal/services"
)

type Services struct {
	Chat services.ChatService
}

// wireServices never fails on a missing or broken Gemini setup: the chat
// service then runs unconfigured and answers every chat with a 503.
func wireServices(ctx context.Context, log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")
	var ai gemini.Generator
	if !cfg.Gemini.Configured() {
		log.Error("GEMINI_API_KEY not found; chat is disabled until it is set")
	} else if client, err := gemini.NewClient(ctx, cfg.Gemini, log); err != nil {
		log.Error("Gemini client init failed; chat is disabled", "error", err)
	} else {
		log.Info("GEMINI_API_KEY loaded successfully", "model", cfg.Gemini.Model)
		ai = client
	}
	return Services{
		Chat: services.NewChatService(log, reposet.ChatRecord, ai, cfg.Gemini.Model),
	}
}
