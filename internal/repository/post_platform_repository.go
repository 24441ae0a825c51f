package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postloom/postloom/internal/models"
)

// PostPlatformRepository persists the per-platform delivery rows. All status
// writes are targeted single-row updates guarded by the set of admissible
// prior statuses, so the forward-only state machine holds even under
// duplicate at-least-once job deliveries. Guarded methods return false when
// the row was already past the requested transition.
type PostPlatformRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pp *models.PostPlatform) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PostPlatform, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostPlatform, error)
	MarkPublishing(ctx context.Context, id int64, attempt int) (bool, error)
	MarkPublished(ctx context.Context, id int64, remotePostID, remotePostURL string, publishedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, errorMessage string) (bool, error)
	RecordError(ctx context.Context, id int64, errorMessage string) error
}

type postPlatformRepository struct {
	db *sql.DB
}

func NewPostPlatformRepository(db *sql.DB) PostPlatformRepository {
	return &postPlatformRepository{db: db}
}

func (r *postPlatformRepository) Create(ctx context.Context, tx *sql.Tx, pp *models.PostPlatform) (int64, error) {
	query := `
		INSERT INTO post_platforms (post_id, account_id, platform, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, pp.PostID, pp.AccountID, pp.Platform, models.PlatformStatusPending).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, pp.PostID, pp.AccountID, pp.Platform, models.PlatformStatusPending).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postPlatformRepository) GetByID(ctx context.Context, id int64) (*models.PostPlatform, error) {
	query := `
		SELECT id, post_id, account_id, platform, status, remote_post_id, remote_post_url, error_message, attempt_count, published_at, created_at, updated_at
		FROM post_platforms
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var pp models.PostPlatform
	err := row.Scan(&pp.ID, &pp.PostID, &pp.AccountID, &pp.Platform, &pp.Status, &pp.RemotePostID, &pp.RemotePostURL, &pp.ErrorMessage, &pp.AttemptCount, &pp.PublishedAt, &pp.CreatedAt, &pp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &pp, nil
}

func (r *postPlatformRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostPlatform, error) {
	query := `
		SELECT id, post_id, account_id, platform, status, remote_post_id, remote_post_url, error_message, attempt_count, published_at, created_at, updated_at
		FROM post_platforms
		WHERE post_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var platforms []*models.PostPlatform
	for rows.Next() {
		var pp models.PostPlatform
		err := rows.Scan(&pp.ID, &pp.PostID, &pp.AccountID, &pp.Platform, &pp.Status, &pp.RemotePostID, &pp.RemotePostURL, &pp.ErrorMessage, &pp.AttemptCount, &pp.PublishedAt, &pp.CreatedAt, &pp.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		platforms = append(platforms, &pp)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return platforms, nil
}

// MarkPublishing moves pending to publishing. Re-marking a row that is
// already publishing succeeds so a redelivered job can continue.
func (r *postPlatformRepository) MarkPublishing(ctx context.Context, id int64, attempt int) (bool, error) {
	query := `
		UPDATE post_platforms
		SET status = $1,
			attempt_count = $2,
			updated_at = $3
		WHERE id = $4 AND status IN ($5, $1)
	`
	result, err := r.db.ExecContext(ctx, query, models.PlatformStatusPublishing, attempt, time.Now(), id, models.PlatformStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

func (r *postPlatformRepository) MarkPublished(ctx context.Context, id int64, remotePostID, remotePostURL string, publishedAt time.Time) (bool, error) {
	query := `
		UPDATE post_platforms
		SET status = $1,
			remote_post_id = $2,
			remote_post_url = $3,
			error_message = '',
			published_at = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7
	`
	result, err := r.db.ExecContext(ctx, query, models.PlatformStatusPublished, remotePostID, remotePostURL, publishedAt, time.Now(), id, models.PlatformStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

func (r *postPlatformRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) (bool, error) {
	query := `
		UPDATE post_platforms
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	result, err := r.db.ExecContext(ctx, query, models.PlatformStatusFailed, errorMessage, time.Now(), id, models.PlatformStatusPending, models.PlatformStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

// RecordError stores the latest failure message without changing status,
// used between retry attempts while the row stays publishing.
func (r *postPlatformRepository) RecordError(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE post_platforms
		SET error_message = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, errorMessage, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func rowsAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}
