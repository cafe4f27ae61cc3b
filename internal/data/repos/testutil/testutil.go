package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/carebloom-backend/internal/data/db"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return logg
}

// DB opens a fresh sqlite database file under tb.TempDir() with the chat schema
// in place. Each call gets its own file, so tests never share rows.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return OpenAt(tb, filepath.Join(tb.TempDir(), "chat_history.db"))
}

// OpenAt opens (or reopens) the sqlite file at path and ensures the schema.
func OpenAt(tb testing.TB, path string) *gorm.DB {
	tb.Helper()
	svc, err := db.NewDatabaseService(db.Config{Driver: db.DriverSQLite, Path: path}, Logger(tb))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	if err := db.EnsureChatSchema(svc.DB()); err != nil {
		tb.Fatalf("ensure chat schema: %v", err)
	}
	return svc.DB()
}
