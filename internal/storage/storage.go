// Package storage wraps the PostgreSQL connection pool behind the small
// surface the cores need. Every domain operation runs inside a single
// transaction; the pool itself is safe for concurrent use.
package storage

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/storage/model"
)

type Storage struct {
	ctx    context.Context
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func NewStorage(ctx context.Context, l *zap.Logger) *Storage {
	return &Storage{ctx: ctx, logger: l}
}

func (s *Storage) Connect(dsn string) error {
	var err error
	s.pool, err = pgxpool.Connect(s.ctx, dsn)
	return err
}

// Init creates the schema if it does not exist yet.
func (s *Storage) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Storage) Begin(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.pool.BeginFunc(ctx, fn)
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// CreateEmoji appends one catalog record. The store assigns id and created_at.
func (s *Storage) CreateEmoji(ctx context.Context, e *model.Emoji) error {
	return s.Begin(ctx, func(tx pgx.Tx) error {
		return model.CreateEmoji(ctx, tx, e)
	})
}

// ToggleLike flips the (userID, emojiID) membership and adjusts likes_count
// in one transaction. The row lock taken on the emoji row serializes
// concurrent toggles on the same emoji; toggles on different emojis do not
// contend.
func (s *Storage) ToggleLike(ctx context.Context, userID string, emojiID int64) (int64, bool, error) {
	var count int64
	var liked bool
	err := s.Begin(ctx, func(tx pgx.Tx) error {
		var err error
		count, liked, err = model.ToggleLike(ctx, tx, userID, emojiID)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return count, liked, nil
}

// EnsureProfile creates the profile for an external identity if it is not
// present. Reports whether a row was created; replaying the same identity is
// a no-op.
func (s *Storage) EnsureProfile(ctx context.Context, userID, email string) (bool, error) {
	var created bool
	err := s.Begin(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = model.EnsureProfile(ctx, tx, &model.Profile{UserID: userID, Email: email})
		return err
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ListEmojis returns the newest records first, each with the viewer's liked
// flag resolved.
func (s *Storage) ListEmojis(ctx context.Context, viewerID string, limit, offset int) ([]*model.EmojiListing, error) {
	var listings []*model.EmojiListing
	err := s.Begin(ctx, func(tx pgx.Tx) error {
		var err error
		listings, err = model.FindEmojis(ctx, tx, viewerID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}
