package db

import (
	"fmt"

	"gorm.io/gorm"
)

// EnsureChatSchema creates the chats table and its ordering index when they are
// missing. Safe to run on every start; existing rows are never touched.
func EnsureChatSchema(db *gorm.DB) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	timestampColumn := "timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"
	if db.Dialector.Name() == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
		timestampColumn = "timestamp TIMESTAMPTZ NOT NULL DEFAULT now()"
	}

	if err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chats (
			%s,
			user_message TEXT NOT NULL,
			bot_reply TEXT NOT NULL,
			%s
		);
	`, idColumn, timestampColumn)).Error; err != nil {
		return fmt.Errorf("create chats table: %w", err)
	}

	// Retrieval and positional deletes both walk (timestamp, id).
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_chats_timestamp_id
		ON chats (timestamp, id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_chats_timestamp_id: %w", err)
	}
	return nil
}
