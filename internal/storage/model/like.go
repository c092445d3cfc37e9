package model

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
)

// ErrEmojiNotFound reports a toggle against an emoji id with no catalog row.
var ErrEmojiNotFound = errors.New("emoji not found")

// Like is one (user, emoji) membership. Rows are created and deleted by
// ToggleLike only, never updated in place; their existence is the sole
// source of truth for "liked" state.
type Like struct {
	UserID  string
	EmojiID int64
}

// ToggleLike flips the membership and moves likes_count with it, returning
// the new count and the resulting liked state. The initial `for update`
// select pins the emoji row for the rest of the transaction, so concurrent
// toggles on the same emoji serialize and the count always matches the
// surviving membership rows. Must run inside a transaction.
func ToggleLike(ctx context.Context, tx pgx.Tx, userID string, emojiID int64) (int64, bool, error) {
	var count int64
	if err := tx.QueryRow(ctx, `select likes_count from emojis where id = $1 for update`, emojiID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, ErrEmojiNotFound
		}
		return 0, false, err
	}

	removed, err := queryUpdateDelete(
		ctx,
		tx,
		`delete from emoji_likes where user_id = $1 and emoji_id = $2`,
		[]interface{}{userID, emojiID},
	)
	if err != nil {
		return 0, false, err
	}

	if removed {
		err = tx.QueryRow(ctx, `update emojis set likes_count = likes_count - 1 where id = $1 returning likes_count`, emojiID).Scan(&count)
		return count, false, err
	}

	if _, err := tx.Exec(ctx, `insert into emoji_likes (user_id, emoji_id) values ($1, $2)`, userID, emojiID); err != nil {
		return 0, false, err
	}

	err = tx.QueryRow(ctx, `update emojis set likes_count = likes_count + 1 where id = $1 returning likes_count`, emojiID).Scan(&count)
	return count, true, err
}
