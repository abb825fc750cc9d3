package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/models"
)

const analysisColumns = `id, source, symbols, time_range, summary, insights,
	recommendation, confidence, duration_ms, created_at`

// AnalysisRepo stores the history of analysis runs.
type AnalysisRepo struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

func (r *AnalysisRepo) Record(ctx context.Context, run *models.AnalysisRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO analysis_runs
		 (id, source, symbols, time_range, summary, insights,
		  recommendation, confidence, duration_ms, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		run.ID, run.Source, run.Symbols, string(run.TimeRange), run.Summary, run.Insights,
		string(run.Recommendation), run.Confidence, run.DurationMillis, run.CreatedAt,
	)
	return err
}

// Recent returns the latest runs, newest first. A non-empty symbol keeps
// only runs that included it.
func (r *AnalysisRepo) Recent(ctx context.Context, symbol string, limit int) ([]models.AnalysisRun, error) {
	query := `SELECT ` + analysisColumns + ` FROM analysis_runs`
	args := []any{limit}
	if symbol != "" {
		query += ` WHERE $2 = ANY(symbols)`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AnalysisRun{}
	for rows.Next() {
		run, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// Latest returns the newest run for symbol, or nil if there is none.
func (r *AnalysisRepo) Latest(ctx context.Context, symbol string) (*models.AnalysisRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analysis_runs
		 WHERE $1 = ANY(symbols) ORDER BY created_at DESC LIMIT 1`,
		symbol,
	)
	run, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func scanAnalysis(row scannable) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	var timeRange, rec string
	err := row.Scan(
		&run.ID, &run.Source, &run.Symbols, &timeRange, &run.Summary, &run.Insights,
		&rec, &run.Confidence, &run.DurationMillis, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.TimeRange = analysis.TimeRange(timeRange)
	run.Recommendation = analysis.Recommendation(rec)
	return &run, nil
}
