package model

import (
	"context"

	"github.com/jackc/pgx/v4"
)

func query(ctx context.Context, tx pgx.Tx, sql string, args []interface{}, scans []interface{}) error {
	_, err := tx.QueryFunc(ctx, sql, args, scans, func(pgx.QueryFuncRow) error { return nil })
	return err
}

func queryUpdateDelete(ctx context.Context, tx pgx.Tx, sql string, args []interface{}) (bool, error) {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
