package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/models"
)

const journalColumns = `id, entry_date, title, content, tags, created_at, updated_at`

type JournalRepo struct {
	pool *pgxpool.Pool
}

func NewJournalRepo(pool *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// JournalFilter narrows List. Query matches title or content
// case-insensitively; Tag must be one of the entry's tags.
type JournalFilter struct {
	Query string
	Tag   string
	Limit int
}

func (r *JournalRepo) Create(ctx context.Context, e *models.JournalEntry) (*models.JournalEntry, error) {
	date, err := time.Parse(models.DateLayout, e.Date)
	if err != nil {
		return nil, fmt.Errorf("entry date: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO journal_entries (entry_date, title, content, tags)
		 VALUES ($1,$2,$3,$4)
		 RETURNING `+journalColumns,
		date, e.Title, e.Content, e.Tags,
	)
	return scanJournal(row)
}

func (r *JournalRepo) Get(ctx context.Context, id int64) (*models.JournalEntry, error) {
	e, err := scanJournal(r.pool.QueryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *JournalRepo) List(ctx context.Context, f JournalFilter) ([]models.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE 1=1`
	var args []any
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR content ILIKE $%d)", len(args), len(args))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJournal(rows)
}

func (r *JournalRepo) Update(ctx context.Context, e *models.JournalEntry) (*models.JournalEntry, error) {
	date, err := time.Parse(models.DateLayout, e.Date)
	if err != nil {
		return nil, fmt.Errorf("entry date: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE journal_entries
		 SET entry_date = $2, title = $3, content = $4, tags = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+journalColumns,
		e.ID, date, e.Title, e.Content, e.Tags,
	)
	updated, err := scanJournal(row)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (r *JournalRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *JournalRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&count)
	return count, err
}

func scanJournal(row scannable) (*models.JournalEntry, error) {
	var e models.JournalEntry
	var date time.Time
	if err := row.Scan(&e.ID, &date, &e.Title, &e.Content, &e.Tags, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = date.Format(models.DateLayout)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func collectJournal(rows rowsIter) ([]models.JournalEntry, error) {
	out := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
