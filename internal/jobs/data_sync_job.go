package job

import (
	"context"
	"log/slog"
	"sync"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/queue"
	"github.com/postloom/postloom/internal/repository"
)

// DataSyncJob fans out one data_sync task per connected account. It runs on
// a cron schedule; the queue does the actual fetching so a slow platform
// never stalls the sweep.
type DataSyncJob struct {
	sr repository.SocialAccountRepository
	q  queue.Enqueuer
}

func NewDataSyncJob(sr repository.SocialAccountRepository, q queue.Enqueuer) *DataSyncJob {
	return &DataSyncJob{
		sr: sr,
		q:  q,
	}
}

func (c *DataSyncJob) SyncAccounts() {
	ctx := context.Background()

	accounts, err := c.sr.ListConnected(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			_, err := c.q.EnqueueDataSync(ctx, queue.DataSyncPayload{
				AccountID: acc.ID,
				Platform:  acc.Platform,
			}, 0)
			if err != nil {
				slog.Info("Unable to enqueue data sync for account")
			}
		}(acc)
	}

	wg.Wait()
}
