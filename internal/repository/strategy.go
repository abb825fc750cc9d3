package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/models"
)

const strategyColumns = `id, name, description, content, created_at, updated_at`

type StrategyRepo struct {
	pool *pgxpool.Pool
}

func NewStrategyRepo(pool *pgxpool.Pool) *StrategyRepo {
	return &StrategyRepo{pool: pool}
}

func (r *StrategyRepo) Create(ctx context.Context, s *models.Strategy) (*models.Strategy, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO strategies (name, description, content)
		 VALUES ($1,$2,$3)
		 RETURNING `+strategyColumns,
		s.Name, s.Description, s.Content,
	)
	return scanStrategy(row)
}

func (r *StrategyRepo) Get(ctx context.Context, id int64) (*models.Strategy, error) {
	s, err := scanStrategy(r.pool.QueryRow(ctx, `SELECT `+strategyColumns+` FROM strategies WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *StrategyRepo) List(ctx context.Context) ([]models.Strategy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+strategyColumns+` FROM strategies ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Strategy{}
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *StrategyRepo) Update(ctx context.Context, s *models.Strategy) (*models.Strategy, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE strategies
		 SET name = $2, description = $3, content = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+strategyColumns,
		s.ID, s.Name, s.Description, s.Content,
	)
	updated, err := scanStrategy(row)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (r *StrategyRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM strategies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StrategyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM strategies`).Scan(&count)
	return count, err
}

func scanStrategy(row scannable) (*models.Strategy, error) {
	var s models.Strategy
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Content, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
