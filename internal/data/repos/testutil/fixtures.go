package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/carebloom-backend/internal/domain"
)

// SeedChatRecord inserts a row directly, bypassing the repo, so tests can
// control timestamps exactly.
func SeedChatRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, user, bot string, ts time.Time) *types.ChatRecord {
	tb.Helper()
	row := &types.ChatRecord{
		UserMessage: user,
		BotReply:    bot,
		Timestamp:   ts.UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed chat record: %v", err)
	}
	return row
}
