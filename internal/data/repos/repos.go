package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/carebloom-backend/internal/data/repos/chat"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

type ChatRecordRepo = chat.ChatRecordRepo

func NewChatRecordRepo(db *gorm.DB, baseLog *logger.Logger) ChatRecordRepo {
	return chat.NewChatRecordRepo(db, baseLog)
}
