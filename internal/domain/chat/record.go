package chat

import "time"

// ChatRecord is one user question and the reply that was sent back for it.
// Rows are never updated; they are only inserted and hard-deleted.
type ChatRecord struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserMessage string    `gorm:"column:user_message;type:text;not null" json:"user_message"`
	BotReply    string    `gorm:"column:bot_reply;type:text;not null" json:"bot_reply"`
	Timestamp   time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (ChatRecord) TableName() string { return "chats" }
