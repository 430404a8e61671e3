package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner drops all db records related with one recording ID
type Cleaner struct {
	pool *pgxpool.Pool
}

// NewCleaner creates Cleaner instance
func NewCleaner(pool *pgxpool.Pool) (*Cleaner, error) {
	res := &Cleaner{pool: pool}
	return res, nil
}

// Clean deletes the recording row and its email locks
func (db *Cleaner) Clean(ctx context.Context, id string) error {
	rID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("wrong id '%s': %w", id, err)
	}
	cmd, err := db.pool.Exec(ctx, `DELETE FROM email_lock WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete %s(email_lock): %w", id, err)
	}
	goapp.Log.Info().Str("ID", id).Str("table", "email_lock").Int64("rows", cmd.RowsAffected()).Msg("deleted")
	cmd, err = db.pool.Exec(ctx, `DELETE FROM recordings WHERE id = $1`, rID)
	if err != nil {
		return fmt.Errorf("can't delete %s(recordings): %w", id, err)
	}
	goapp.Log.Info().Str("ID", id).Str("table", "recordings").Int64("rows", cmd.RowsAffected()).Msg("deleted")
	return nil
}
