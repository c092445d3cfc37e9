package model

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Profile mirrors an external identity. Rows are append-only here; the
// user_id uniqueness is the idempotency key for replayed identity events.
type Profile struct {
	UserID string
	Email  string
}

// EnsureProfile inserts the profile unless one already exists for the same
// external identity. Reports whether a row was created.
func EnsureProfile(ctx context.Context, tx pgx.Tx, p *Profile) (bool, error) {
	tag, err := tx.Exec(
		ctx,
		`insert into profiles (user_id, email) values ($1, $2) on conflict (user_id) do nothing`,
		p.UserID, p.Email,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
