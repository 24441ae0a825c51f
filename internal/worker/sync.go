package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/postloom/postloom/internal/metrics"
	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/postloom/postloom/pkg/utils"
)

// HandleDataSyncTask is the asynq entry point for account:data_sync. It
// refreshes the stored metrics snapshot for one social account.
func (w *Worker) HandleDataSyncTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.DataSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling data sync payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.SyncAccountData(ctx, payload)
}

func (w *Worker) SyncAccountData(ctx context.Context, payload queue.DataSyncPayload) error {
	metrics.DataSyncRuns.Inc()

	account, err := w.sa.GetByID(ctx, payload.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("data sync for missing account %d, dropping", payload.AccountID)
		return nil
	}
	if !account.IsConnected {
		log.Printf("data sync skipped for disconnected account %d", account.ID)
		return nil
	}

	adapter, err := w.registry.Get(account.Platform)
	if err != nil {
		// Configuration error; retrying will not fix it.
		slog.Info(err.Error())
		metrics.DataSyncErrors.Inc()
		return nil
	}

	accessToken, err := utils.OpenToken(account.AccessToken, w.secretKey)
	if err != nil {
		slog.Info(err.Error())
		metrics.DataSyncErrors.Inc()
		return nil
	}

	snapshot, err := adapter.Metrics(ctx, platform.Credentials{
		AccountID:   account.PlatformAccountID,
		AccessToken: accessToken,
	})
	if err != nil {
		metrics.DataSyncErrors.Inc()
		if platform.IsRetryable(err) {
			return err
		}
		log.Printf("data sync for account %d failed permanently: %v", account.ID, err)
		return nil
	}

	_, err = w.am.Create(ctx, &models.AccountMetrics{
		AccountID:      account.ID,
		Followers:      snapshot.Followers,
		Following:      snapshot.Following,
		Posts:          snapshot.Posts,
		EngagementRate: snapshot.EngagementRate,
		CollectedAt:    w.now(),
	})
	return err
}
