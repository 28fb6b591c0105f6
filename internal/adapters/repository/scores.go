package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/types"
)

// UpsertScore inserts or overwrites a judge's score.
func (s *SQLStore) UpsertScore(ctx context.Context, o model.Observation, at time.Time) (sc model.Score, err error) {
	defer observe("upsert_score", time.Now(), &err)

	var created int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO scores (judge_id, competitor_id, value, score_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (judge_id, competitor_id, score_type)
		DO UPDATE SET value = excluded.value
		RETURNING id, created_at`,
		o.JudgeID, o.CompetitorID, o.Value, string(o.ScoreType), millis(at)).Scan(&sc.ID, &created)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Score{}, fmt.Errorf("judge %d or competitor %d: %w", o.JudgeID, o.CompetitorID, ErrNotFound)
		}
		return model.Score{}, fmt.Errorf("upsert score: %w", err)
	}
	sc.Observation = o
	sc.CreatedAt = fromMillis(created)
	return sc, nil
}

// DeleteScore removes one (judge, competitor, score type) score.
func (s *SQLStore) DeleteScore(ctx context.Context, judgeID, competitorID int64, st types.ScoreType) (err error) {
	defer observe("delete_score", time.Now(), &err)

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scores WHERE judge_id = $1 AND competitor_id = $2 AND score_type = $3`,
		judgeID, competitorID, string(st))
	if err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	return mustAffect(res, "score")
}

// DeleteDifficultyPanel clears the difficulty panel's scores for a competitor.
func (s *SQLStore) DeleteDifficultyPanel(ctx context.Context, competitorID int64) (n int64, err error) {
	defer observe("delete_difficulty_panel", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM scores
		WHERE competitor_id = $1
		  AND score_type IN ('difficulty', 'difficulty_penalization')
		  AND judge_id IN (SELECT id FROM judges WHERE role = 'difficulty')`, competitorID)
	if err != nil {
		return 0, fmt.Errorf("delete difficulty panel: %w", err)
	}
	return res.RowsAffected()
}

// ListScores returns scores with the judge's display name, ordered by
// competitor, judge and score type.
func (s *SQLStore) ListScores(ctx context.Context, f ScoreFilter) (out []model.Score, err error) {
	defer observe("list_scores", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.judge_id, s.competitor_id, s.score_type, s.value, s.created_at,
		       j.first_name || ' ' || j.last_name
		FROM scores s
		JOIN judges j ON j.id = s.judge_id
		WHERE ($1 = 0 OR s.judge_id = $1) AND ($2 = 0 OR s.competitor_id = $2)
		ORDER BY s.competitor_id, s.judge_id, s.score_type`, f.JudgeID, f.CompetitorID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out = []model.Score{}
	for rows.Next() {
		var sc model.Score
		var created int64
		if err := rows.Scan(&sc.ID, &sc.JudgeID, &sc.CompetitorID, &sc.ScoreType, &sc.Value, &created, &sc.JudgeName); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		sc.CreatedAt = fromMillis(created)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// RankingFeed returns the left-joined competitor × score × member projection.
func (s *SQLStore) RankingFeed(ctx context.Context) (out []model.FeedRow, err error) {
	defer observe("ranking_feed", time.Now(), &err)
	return rankingFeed(ctx, s.db)
}

// Snapshot reads the ranking feed and the validated totals in one read-only
// transaction. Postgres runs it at REPEATABLE READ; SQLite transactions are
// already serializable.
func (s *SQLStore) Snapshot(ctx context.Context) (snap RankingSnapshot, err error) {
	defer observe("snapshot", time.Now(), &err)

	var opts *sql.TxOptions
	if s.driver == DriverPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return RankingSnapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if snap.Feed, err = rankingFeed(ctx, tx); err != nil {
		return RankingSnapshot{}, err
	}
	if snap.Validated, err = validatedTotals(ctx, tx); err != nil {
		return RankingSnapshot{}, err
	}
	return snap, nil
}

func rankingFeed(ctx context.Context, q queryer) (out []model.FeedRow, err error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.category, c.club,
		       s.judge_id, j.first_name || ' ' || j.last_name, s.score_type, s.value,
		       m.id, m.first_name, m.last_name
		FROM competitors c
		LEFT JOIN scores s ON s.competitor_id = c.id
		LEFT JOIN judges j ON j.id = s.judge_id
		LEFT JOIN competitor_members m ON m.competitor_id = c.id
		ORDER BY c.category, c.id, m.id, s.judge_id, s.id`)
	if err != nil {
		return nil, fmt.Errorf("ranking feed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                    model.FeedRow
			judgeID, memberID    sql.NullInt64
			judgeName, scoreType sql.NullString
			value                sql.NullFloat64
			firstName, lastName  sql.NullString
		)
		if err := rows.Scan(&r.CompetitorID, &r.Category, &r.Club,
			&judgeID, &judgeName, &scoreType, &value,
			&memberID, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		if judgeID.Valid {
			r.JudgeID = &judgeID.Int64
			r.JudgeName = judgeName.String
		}
		if scoreType.Valid {
			st := types.ScoreType(scoreType.String)
			r.ScoreType = &st
		}
		if value.Valid {
			r.Value = &value.Float64
		}
		if memberID.Valid {
			r.MemberID = &memberID.Int64
			r.FirstName = firstName.String
			r.LastName = lastName.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
