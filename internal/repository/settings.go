package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/models"
)

// SettingsRepo keeps the single row of dashboard preferences.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get returns the saved settings, or the defaults if none were saved.
func (r *SettingsRepo) Get(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := r.pool.QueryRow(ctx,
		`SELECT theme, refresh_interval, auto_sync_broker, trade_alerts,
		        price_alerts, ai_insights, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&s.Theme, &s.RefreshIntervalSeconds, &s.AutoSyncBroker, &s.TradeAlerts,
		&s.PriceAlerts, &s.AIInsights, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s models.Settings) (models.Settings, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO settings
		 (id, theme, refresh_interval, auto_sync_broker, trade_alerts, price_alerts, ai_insights, updated_at)
		 VALUES (1,$1,$2,$3,$4,$5,$6,NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   theme = EXCLUDED.theme,
		   refresh_interval = EXCLUDED.refresh_interval,
		   auto_sync_broker = EXCLUDED.auto_sync_broker,
		   trade_alerts = EXCLUDED.trade_alerts,
		   price_alerts = EXCLUDED.price_alerts,
		   ai_insights = EXCLUDED.ai_insights,
		   updated_at = EXCLUDED.updated_at
		 RETURNING updated_at`,
		s.Theme, s.RefreshIntervalSeconds, s.AutoSyncBroker, s.TradeAlerts, s.PriceAlerts, s.AIInsights,
	).Scan(&s.UpdatedAt)
	return s, err
}
