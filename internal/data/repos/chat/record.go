package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/carebloom-backend/internal/data/db"
	types "github.com/yungbote/carebloom-backend/internal/domain"
	errs "github.com/yungbote/carebloom-backend/internal/pkg/errors"
	"github.com/yungbote/carebloom-backend/internal/platform/dbctx"
	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

// ChatRecordRepo is the durable log of chat exchanges.
//
// Positional indexes are ranks in (timestamp ASC, id ASC) order at the moment
// of the call, not record ids.
type ChatRecordRepo interface {
	Initialize(dbc dbctx.Context) error
	Append(dbc dbctx.Context, userMessage, botReply string) (*types.ChatRecord, error)
	ListAll(dbc dbctx.Context) ([]*types.ChatRecord, error)
	Count(dbc dbctx.Context) (int64, error)
	DeleteAt(dbc dbctx.Context, index int) (*types.ChatRecord, error)
	Clear(dbc dbctx.Context) (int64, error)
}

type chatRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger

	// writeMu serializes every mutation so DeleteAt's index-to-id mapping
	// cannot interleave with another append or delete in this process.
	writeMu       sync.Mutex
	lastTimestamp time.Time
	now           func() time.Time
}

func NewChatRecordRepo(db *gorm.DB, baseLog *logger.Logger) ChatRecordRepo {
	return &chatRecordRepo{
		db:  db,
		log: baseLog.With("repo", "ChatRecordRepo"),
		now: time.Now,
	}
}

var chronological = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}},
	{Column: clause.Column{Name: "id"}},
}}

func (r *chatRecordRepo) tx(dbc dbctx.Context) *gorm.DB {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx)
}

func (r *chatRecordRepo) Initialize(dbc dbctx.Context) error {
	if err := db.EnsureChatSchema(r.tx(dbc)); err != nil {
		return fmt.Errorf("initialize chat store: %w", err)
	}
	r.log.Debug("Chat store initialized")
	return nil
}

func (r *chatRecordRepo) Append(dbc dbctx.Context, userMessage, botReply string) (*types.ChatRecord, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, fmt.Errorf("append chat record: empty user message: %w", errs.ErrInvalidArgument)
	}
	if strings.TrimSpace(botReply) == "" {
		return nil, fmt.Errorf("append chat record: empty bot reply: %w", errs.ErrInvalidArgument)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	ts := r.now().UTC().Truncate(time.Microsecond)
	if ts.Before(r.lastTimestamp) {
		// Wall clock stepped back; keep timestamps non-decreasing with id.
		ts = r.lastTimestamp
	}
	row := &types.ChatRecord{
		UserMessage: userMessage,
		BotReply:    botReply,
		Timestamp:   ts,
	}
	if err := r.tx(dbc).Create(row).Error; err != nil {
		return nil, fmt.Errorf("append chat record: %w", err)
	}
	r.lastTimestamp = ts
	r.log.Debug("Chat record saved", "id", row.ID, "user_preview", preview(userMessage), "bot_preview", preview(botReply))
	return row, nil
}

func (r *chatRecordRepo) ListAll(dbc dbctx.Context) ([]*types.ChatRecord, error) {
	out := []*types.ChatRecord{}
	if err := r.tx(dbc).
		Model(&types.ChatRecord{}).
		Order(chronological).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list chat records: %w", err)
	}
	return out, nil
}

func (r *chatRecordRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).Model(&types.ChatRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chat records: %w", err)
	}
	return n, nil
}

func (r *chatRecordRepo) DeleteAt(dbc dbctx.Context, index int) (*types.ChatRecord, error) {
	if index < 0 {
		return nil, fmt.Errorf("delete chat record at %d: %w", index, errs.ErrIndexOutOfRange)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var deleted *types.ChatRecord
	err := r.tx(dbc).Transaction(func(tx *gorm.DB) error {
		var rows []*types.ChatRecord
		if err := tx.Model(&types.ChatRecord{}).
			Order(chronological).
			Offset(index).
			Limit(1).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("position %d: %w", index, errs.ErrIndexOutOfRange)
		}
		if err := tx.Delete(&types.ChatRecord{}, rows[0].ID).Error; err != nil {
			return err
		}
		deleted = rows[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete chat record: %w", err)
	}
	r.log.Debug("Chat record deleted", "index", index, "id", deleted.ID)
	return deleted, nil
}

func (r *chatRecordRepo) Clear(dbc dbctx.Context) (int64, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	res := r.tx(dbc).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&types.ChatRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear chat records: %w", res.Error)
	}
	r.log.Debug("Chat records cleared", "deleted", res.RowsAffected)
	return res.RowsAffected, nil
}

func preview(s string) string {
	const max = 30
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
