package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
)

// Emoji is one generated, stored image and its social metadata. Everything
// except LikesCount is immutable once the row exists; a row is only ever
// created after the image blob is durably uploaded.
type Emoji struct {
	ID            int64
	ImageURL      string
	Prompt        string
	LikesCount    int64
	CreatorUserID string
	CreatedAt     time.Time
}

// EmojiListing is an Emoji plus the viewer's like membership.
type EmojiListing struct {
	Emoji
	Liked bool
}

func CreateEmoji(ctx context.Context, tx pgx.Tx, e *Emoji) error {
	return query(
		ctx,
		tx,
		`insert into emojis (image_url, prompt, creator_user_id) values ($1, $2, $3) returning id, created_at`,
		[]interface{}{e.ImageURL, e.Prompt, e.CreatorUserID},
		[]interface{}{&e.ID, &e.CreatedAt},
	)
}

func FindEmojis(ctx context.Context, tx pgx.Tx, viewerID string, limit, offset int) ([]*EmojiListing, error) {
	l := make([]*EmojiListing, 0, limit)
	q, err := tx.Query(
		ctx,
		`select e.id, e.image_url, e.prompt, e.likes_count, e.creator_user_id, e.created_at,
			exists (select 1 from emoji_likes el where el.emoji_id = e.id and el.user_id = $1)
		from emojis e order by e.created_at desc limit $2 offset $3`,
		viewerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	defer q.Close()
	for q.Next() {
		el := &EmojiListing{}
		if err := q.Scan(&el.ID, &el.ImageURL, &el.Prompt, &el.LikesCount, &el.CreatorUserID, &el.CreatedAt, &el.Liked); err != nil {
			return nil, err
		}

		l = append(l, el)
	}

	return l, q.Err()
}
