package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Both live slots hold at most one row; setters replace the row in a transaction.

func (s *SQLStore) SetVote(ctx context.Context, competitorID int64, at time.Time) (err error) {
	defer observe("set_vote", time.Now(), &err)
	return s.setSlot(ctx, "current_vote", competitorID, at)
}

func (s *SQLStore) ClearVote(ctx context.Context) (err error) {
	defer observe("clear_vote", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM current_vote`)
	if err != nil {
		return fmt.Errorf("clear vote: %w", err)
	}
	return mustAffect(res, "vote")
}

func (s *SQLStore) CurrentVote(ctx context.Context) (slot Slot, err error) {
	defer observe("current_vote", time.Now(), &err)
	return s.slot(ctx, `SELECT competitor_id, started_at FROM current_vote LIMIT 1`, "vote")
}

func (s *SQLStore) HasScored(ctx context.Context, judgeID, competitorID int64) (ok bool, err error) {
	defer observe("has_scored", time.Now(), &err)

	var n int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scores WHERE judge_id = $1 AND competitor_id = $2`,
		judgeID, competitorID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has scored: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) SetShow(ctx context.Context, competitorID int64, at time.Time) (err error) {
	defer observe("set_show", time.Now(), &err)
	return s.setSlot(ctx, "show_competitor", competitorID, at)
}

func (s *SQLStore) ExpireShow(ctx context.Context, cutoff time.Time) (err error) {
	defer observe("expire_show", time.Now(), &err)

	if _, err = s.db.ExecContext(ctx, `DELETE FROM show_competitor WHERE started_at < $1`, millis(cutoff)); err != nil {
		return fmt.Errorf("expire show: %w", err)
	}
	return nil
}

func (s *SQLStore) CurrentShow(ctx context.Context) (slot Slot, err error) {
	defer observe("current_show", time.Now(), &err)
	return s.slot(ctx, `SELECT competitor_id, started_at FROM show_competitor LIMIT 1`, "show")
}

func (s *SQLStore) ClearShow(ctx context.Context) (err error) {
	defer observe("clear_show", time.Now(), &err)

	if _, err = s.db.ExecContext(ctx, `DELETE FROM show_competitor`); err != nil {
		return fmt.Errorf("clear show: %w", err)
	}
	return nil
}

// setSlot replaces the single row of table. table is one of the two slot
// table names, never caller input.
func (s *SQLStore) setSlot(ctx context.Context, table string, competitorID int64, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (competitor_id, started_at) VALUES ($1, $2)`, competitorID, millis(at))
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("competitor %d: %w", competitorID, ErrNotFound)
			}
			return fmt.Errorf("set %s: %w", table, err)
		}
		return nil
	})
}

func (s *SQLStore) slot(ctx context.Context, query, what string) (Slot, error) {
	var slot Slot
	var started int64
	err := s.db.QueryRowContext(ctx, query).Scan(&slot.CompetitorID, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("current %s: %w", what, err)
	}
	slot.StartedAt = fromMillis(started)
	return slot, nil
}
