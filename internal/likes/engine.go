// Package likes flips like memberships and keeps the per-emoji counter in
// step with them.
package likes

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/fault"
	"github.com/emojimaker/server/internal/storage/model"
)

// Catalog performs the membership flip and counter move as one atomic
// operation. Implementations must guarantee that either both changes commit
// or neither does, and that toggles on the same emoji serialize.
type Catalog interface {
	ToggleLike(ctx context.Context, userID string, emojiID int64) (count int64, liked bool, err error)
}

type Result struct {
	LikesCount int64
	Liked      bool
}

type Engine struct {
	logger  *zap.SugaredLogger
	catalog Catalog
}

func NewEngine(logger *zap.SugaredLogger, catalog Catalog) *Engine {
	return &Engine{logger: logger, catalog: catalog}
}

// Toggle creates the membership and increments the count, or removes it and
// decrements, depending on current state. Two sequential toggles by the same
// user restore the original state; concurrent toggles by the same user
// serialize with last-completed-wins semantics.
func (e *Engine) Toggle(ctx context.Context, userID string, emojiID int64) (*Result, error) {
	if userID == "" {
		return nil, fault.New(fault.KindAuth, "Unauthorized")
	}
	if emojiID <= 0 {
		return nil, fault.New(fault.KindValidation, "Missing emojiId")
	}

	count, liked, err := e.catalog.ToggleLike(ctx, userID, emojiID)
	if err != nil {
		if errors.Is(err, model.ErrEmojiNotFound) {
			return nil, fault.Wrap(fault.KindValidation, "Unknown emoji", err)
		}
		return nil, fault.Wrap(fault.KindPersistence, "Error toggling like", err)
	}

	e.logger.Debugf("User %s toggled emoji %d: liked=%t count=%d.", userID, emojiID, liked, count)
	return &Result{LikesCount: count, Liked: liked}, nil
}
