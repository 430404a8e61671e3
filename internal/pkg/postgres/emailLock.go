package postgres

import (
	"context"
	"fmt"
)

// LockEmailTable marks the email sending as started for (id, msgType).
// The primary key makes the second insert fail, so an email goes out once
func (db *DB) LockEmailTable(ctx context.Context, id string, msgType string) error {
	rows, err := db.pool.Query(ctx, `INSERT INTO email_lock(id, msg_type, status)
	VALUES($1, $2, 0)`, id, msgType)
	if err != nil {
		return fmt.Errorf("can't lock email table: %w", err)
	}
	defer rows.Close()
	return nil
}

// UnLockEmailTable either marks the email as sent or drops the lock
// so a retried job may try again
func (db *DB) UnLockEmailTable(ctx context.Context, id string, msgType string, value *int) error {
	if value != nil && *value > 0 {
		cmd, err := db.pool.Exec(ctx, `UPDATE email_lock SET status = $3
		WHERE id = $1 AND msg_type = $2`, id, msgType, *value)
		if err != nil {
			return fmt.Errorf("can't update email lock: %w", err)
		}
		if cmd.RowsAffected() != 1 {
			return fmt.Errorf("can't update email lock, no records found")
		}
		return nil
	}
	if _, err := db.pool.Exec(ctx, `DELETE FROM email_lock
	WHERE id = $1 AND msg_type = $2`, id, msgType); err != nil {
		return fmt.Errorf("can't unlock email table: %w", err)
	}
	return nil
}
