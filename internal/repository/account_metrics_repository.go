package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postloom/postloom/internal/models"
)

type AccountMetricsRepository interface {
	Create(ctx context.Context, m *models.AccountMetrics) (int64, error)
	GetLatestByAccountID(ctx context.Context, accountID int64) (*models.AccountMetrics, error)
}

type accountMetricsRepository struct {
	db *sql.DB
}

func NewAccountMetricsRepository(db *sql.DB) AccountMetricsRepository {
	return &accountMetricsRepository{db: db}
}

func (r *accountMetricsRepository) Create(ctx context.Context, m *models.AccountMetrics) (int64, error) {
	query := `
		INSERT INTO account_metrics (account_id, followers, following, posts, engagement_rate, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, m.AccountID, m.Followers, m.Following, m.Posts, m.EngagementRate, m.CollectedAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *accountMetricsRepository) GetLatestByAccountID(ctx context.Context, accountID int64) (*models.AccountMetrics, error) {
	query := `
		SELECT id, account_id, followers, following, posts, engagement_rate, collected_at
		FROM account_metrics
		WHERE account_id = $1
		ORDER BY collected_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, accountID)

	var m models.AccountMetrics
	err := row.Scan(&m.ID, &m.AccountID, &m.Followers, &m.Following, &m.Posts, &m.EngagementRate, &m.CollectedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &m, nil
}
