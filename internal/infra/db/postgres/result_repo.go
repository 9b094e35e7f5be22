package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/repository"
)

var _ repository.ResultStore = (*resultRepo)(nil)

// resultRepo persists rewrite results directly to Postgres, the
// alternative to posting them to the HTTP save backend.
type resultRepo struct{ pool *pgxpool.Pool }

func NewResultRepo(pool *pgxpool.Pool) *resultRepo {
	return &resultRepo{pool: pool}
}

func (r *resultRepo) Save(ctx context.Context, res *model.RewriteResult) error {
	const q = `
INSERT INTO resume_results (
  original_content, modified_content, modification_description, user_id, status,
  resume_classification, modified_resume_classification, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	tag, err := r.pool.Exec(ctx, q,
		res.OriginalContent, res.ModifiedContent, res.ModificationDescription,
		res.UserID, res.Status, res.ResumeClassification, res.ModifiedClassification,
		res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			// check constraint: bad status or empty content
			return domain.ErrInvalidArgument
		}
		return err
	}
	if tag.RowsAffected() != 1 {
		return errors.New("resume_results insert affected no rows")
	}
	return nil
}

// FindByUser returns the most recent results for one client, newest first.
func (r *resultRepo) FindByUser(ctx context.Context, userID string, limit int) ([]model.RewriteResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT original_content, modified_content, modification_description, user_id, status,
       resume_classification, modified_resume_classification, created_at
FROM resume_results WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	defer rows.Close()

	var out []model.RewriteResult
	for rows.Next() {
		var res model.RewriteResult
		if err := rows.Scan(&res.OriginalContent, &res.ModifiedContent, &res.ModificationDescription,
			&res.UserID, &res.Status, &res.ResumeClassification, &res.ModifiedClassification,
			&res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
