package domain

import "github.com/yungbote/carebloom-backend/internal/domain/chat"

type (
	ChatRecord = chat.ChatRecord
)
