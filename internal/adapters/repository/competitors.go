package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/aeroscore/internal/domain/model"
)

// CreateCompetitor inserts a competitor and its members in one transaction.
func (s *SQLStore) CreateCompetitor(ctx context.Context, c model.Competitor) (out model.Competitor, err error) {
	defer observe("create_competitor", time.Now(), &err)

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO competitors (category, club, created_at) VALUES ($1, $2, $3) RETURNING id`,
			c.Category, c.Club, millis(c.CreatedAt)).Scan(&c.ID); err != nil {
			return fmt.Errorf("insert competitor: %w", err)
		}
		for i := range c.Members {
			m := &c.Members[i]
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO competitor_members (competitor_id, first_name, last_name, email, age, sex)
				 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				c.ID, m.FirstName, m.LastName, m.Email, m.Age, m.Sex).Scan(&m.ID); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("member email %q: %w", m.Email, ErrConflict)
				}
				return fmt.Errorf("insert member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Competitor{}, err
	}
	c.CreatedAt = fromMillis(millis(c.CreatedAt))
	return c, nil
}

// DeleteCompetitor removes a competitor; members, scores and live slots cascade.
func (s *SQLStore) DeleteCompetitor(ctx context.Context, id int64) (err error) {
	defer observe("delete_competitor", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete competitor: %w", err)
	}
	return mustAffect(res, "competitor")
}

// GetCompetitor returns one competitor with members.
func (s *SQLStore) GetCompetitor(ctx context.Context, id int64) (c model.Competitor, err error) {
	defer observe("get_competitor", time.Now(), &err)

	var created int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id, category, club, created_at FROM competitors WHERE id = $1`, id).
		Scan(&c.ID, &c.Category, &c.Club, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Competitor{}, fmt.Errorf("competitor %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Competitor{}, fmt.Errorf("get competitor: %w", err)
	}
	c.CreatedAt = fromMillis(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, age, sex
		 FROM competitor_members WHERE competitor_id = $1 ORDER BY id`, id)
	if err != nil {
		return model.Competitor{}, fmt.Errorf("get members: %w", err)
	}
	defer rows.Close()

	c.Members = []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Age, &m.Sex); err != nil {
			return model.Competitor{}, fmt.Errorf("scan member: %w", err)
		}
		c.Members = append(c.Members, m)
	}
	return c, rows.Err()
}

// ListCompetitors returns competitors with members, optionally for one category.
func (s *SQLStore) ListCompetitors(ctx context.Context, category string) (out []model.Competitor, err error) {
	defer observe("list_competitors", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.category, c.club, c.created_at,
		       m.id, m.first_name, m.last_name, m.email, m.age, m.sex
		FROM competitors c
		LEFT JOIN competitor_members m ON m.competitor_id = c.id
		WHERE $1 = '' OR c.category = $1
		ORDER BY c.id, m.id`, category)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	out = []model.Competitor{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			c                  model.Competitor
			created            int64
			memberID, age      sql.NullInt64
			first, last, email sql.NullString
			sex                sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Category, &c.Club, &created,
			&memberID, &first, &last, &email, &age, &sex); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		i, ok := index[c.ID]
		if !ok {
			c.CreatedAt = fromMillis(created)
			c.Members = []model.Member{}
			out = append(out, c)
			i = len(out) - 1
			index[c.ID] = i
		}
		if memberID.Valid {
			out[i].Members = append(out[i].Members, model.Member{
				ID:        memberID.Int64,
				FirstName: first.String,
				LastName:  last.String,
				Email:     email.String,
				Age:       int(age.Int64),
				Sex:       sex.String,
			})
		}
	}
	return out, rows.Err()
}

// CountCompetitors returns the number of registered competitors.
func (s *SQLStore) CountCompetitors(ctx context.Context) (n int, err error) {
	defer observe("count_competitors", time.Now(), &err)

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM competitors`).Scan(&n)
	return n, err
}

// CountCategories returns the number of distinct categories with competitors.
func (s *SQLStore) CountCategories(ctx context.Context) (n int, err error) {
	defer observe("count_categories", time.Now(), &err)

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT category) FROM competitors`).Scan(&n)
	return n, err
}

// Validate upserts the validated total and clears the competitor's open vote.
func (s *SQLStore) Validate(ctx context.Context, competitorID int64, total float64, at time.Time) (err error) {
	defer observe("validate", time.Now(), &err)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO validated_competitors (competitor_id, total_score, validated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (competitor_id) DO UPDATE
			SET total_score = excluded.total_score, validated_at = excluded.validated_at`,
			competitorID, total, millis(at)); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("competitor %d: %w", competitorID, ErrNotFound)
			}
			return fmt.Errorf("validate: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM current_vote WHERE competitor_id = $1`, competitorID); err != nil {
			return fmt.Errorf("close vote: %w", err)
		}
		return nil
	})
}

// Unvalidate removes a validated total.
func (s *SQLStore) Unvalidate(ctx context.Context, competitorID int64) (err error) {
	defer observe("unvalidate", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM validated_competitors WHERE competitor_id = $1`, competitorID)
	if err != nil {
		return fmt.Errorf("unvalidate: %w", err)
	}
	return mustAffect(res, "validated competitor")
}

// ValidatedTotals returns competitor id → validated total.
func (s *SQLStore) ValidatedTotals(ctx context.Context) (out map[int64]float64, err error) {
	defer observe("validated_totals", time.Now(), &err)
	return validatedTotals(ctx, s.db)
}

func validatedTotals(ctx context.Context, q queryer) (out map[int64]float64, err error) {
	rows, err := q.QueryContext(ctx, `SELECT competitor_id, total_score FROM validated_competitors`)
	if err != nil {
		return nil, fmt.Errorf("validated totals: %w", err)
	}
	defer rows.Close()

	out = make(map[int64]float64)
	for rows.Next() {
		var id int64
		var total float64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan validated: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}
