package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/aeroscore/internal/domain/model"
)

func (s *SQLStore) CreateJudge(ctx context.Context, j model.Judge) (out model.Judge, err error) {
	defer observe("create_judge", time.Now(), &err)

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO judges (first_name, last_name, role) VALUES ($1, $2, $3) RETURNING id`,
		j.FirstName, j.LastName, string(j.Role)).Scan(&j.ID)
	if isUniqueViolation(err) {
		return model.Judge{}, fmt.Errorf("judge %s %s: %w", j.FirstName, j.LastName, ErrConflict)
	}
	if err != nil {
		return model.Judge{}, fmt.Errorf("insert judge: %w", err)
	}
	return j, nil
}

func (s *SQLStore) GetJudge(ctx context.Context, id int64) (j model.Judge, err error) {
	defer observe("get_judge", time.Now(), &err)

	err = s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, role FROM judges WHERE id = $1`, id).
		Scan(&j.ID, &j.FirstName, &j.LastName, &j.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Judge{}, fmt.Errorf("judge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Judge{}, fmt.Errorf("get judge: %w", err)
	}
	return j, nil
}

func (s *SQLStore) ListJudges(ctx context.Context) (out []model.Judge, err error) {
	defer observe("list_judges", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT id, first_name, last_name, role FROM judges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list judges: %w", err)
	}
	defer rows.Close()

	out = []model.Judge{}
	for rows.Next() {
		var j model.Judge
		if err := rows.Scan(&j.ID, &j.FirstName, &j.LastName, &j.Role); err != nil {
			return nil, fmt.Errorf("scan judge: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// RenameJudge sets the judge's name, as entered at their first login.
func (s *SQLStore) RenameJudge(ctx context.Context, id int64, firstName, lastName string) (j model.Judge, err error) {
	defer observe("rename_judge", time.Now(), &err)

	res, err := s.db.ExecContext(ctx,
		`UPDATE judges SET first_name = $1, last_name = $2 WHERE id = $3`, firstName, lastName, id)
	if isUniqueViolation(err) {
		return model.Judge{}, fmt.Errorf("judge %s %s: %w", firstName, lastName, ErrConflict)
	}
	if err != nil {
		return model.Judge{}, fmt.Errorf("rename judge: %w", err)
	}
	if err := mustAffect(res, "judge"); err != nil {
		return model.Judge{}, err
	}
	return s.GetJudge(ctx, id)
}
