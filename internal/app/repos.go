package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/carebloom-backend/internal/data/repos"
	"github.com/yungbote/carebloom-backend/internal/platform/dbctx"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

type Repos struct {
	ChatRecord repos.ChatRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) (Repos, error) {
	log.Info("Wiring repos...")
	r := Repos{
		ChatRecord: repos.NewChatRecordRepo(db, log),
	}
	if err := r.ChatRecord.Initialize(dbctx.Background()); err != nil {
		return Repos{}, err
	}
	return r, nil
}
