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

// HandlePublishPostTask is the asynq entry point for post:publish. Publish
// outcomes, good or bad, end in a persisted delivery state and a nil return;
// only infrastructure failures propagate so the queue's redelivery applies.
func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling publish payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Attempt < 1 {
		payload.Attempt = 1
	}
	return w.PublishPost(ctx, payload)
}

// PublishPost drives one delivery row through its state machine: load,
// fail-fast checks, pending→publishing, one adapter call, terminal write,
// post rollup. Safe to invoke more than once for the same payload.
func (w *Worker) PublishPost(ctx context.Context, payload queue.PublishPostPayload) error {
	pp, err := w.pp.GetByID(ctx, payload.PlatformID)
	if err != nil {
		return err
	}
	if pp == nil {
		log.Printf("publish job for missing delivery row %d, dropping", payload.PlatformID)
		return nil
	}
	if models.IsTerminalPlatformStatus(pp.Status) {
		// Duplicate at-least-once delivery after the outcome was recorded.
		log.Printf("delivery %d already %s, skipping", pp.ID, pp.Status)
		return nil
	}

	post, err := w.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return w.failTerminal(ctx, pp, "post not found")
	}

	account, err := w.sa.GetByID(ctx, payload.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return w.failTerminal(ctx, pp, "social account not found")
	}
	if !account.IsConnected {
		return w.failTerminal(ctx, pp, "social account is disconnected")
	}

	adapter, err := w.registry.Get(pp.Platform)
	if err != nil {
		return w.failTerminal(ctx, pp, err.Error())
	}

	ok, err := w.pp.MarkPublishing(ctx, pp.ID, payload.Attempt)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent duplicate finished the row between our read and this
		// write; nothing left to do.
		log.Printf("delivery %d reached terminal state concurrently, skipping", pp.ID)
		return nil
	}

	accessToken, err := utils.OpenToken(account.AccessToken, w.secretKey)
	if err != nil {
		slog.Info(err.Error())
		return w.failTerminal(ctx, pp, "account credentials unreadable")
	}

	creds := platform.Credentials{
		AccountID:   account.PlatformAccountID,
		AccessToken: accessToken,
	}
	content := platform.Content{
		Text:      post.Content,
		MediaURLs: post.MediaURLs,
		Hashtags:  post.Hashtags,
	}

	metrics.PublishAttempts.WithLabelValues(pp.Platform).Inc()
	start := w.now()
	result, err := adapter.Publish(ctx, creds, content)
	metrics.ObservePublishDuration(start)

	if err != nil {
		if platform.IsRetryable(err) && payload.Attempt < w.maxAttempts {
			return w.scheduleRetry(ctx, pp, payload, err)
		}
		metrics.PublishFailures.WithLabelValues(pp.Platform).Inc()
		return w.failTerminal(ctx, pp, err.Error())
	}

	ok, err = w.pp.MarkPublished(ctx, pp.ID, result.RemoteID, result.RemoteURL, w.now())
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("delivery %d already finalized, keeping existing outcome", pp.ID)
	}
	metrics.PublishSuccesses.WithLabelValues(pp.Platform).Inc()

	return w.rollupPost(ctx, pp.PostID)
}

// scheduleRetry records the failure and re-enqueues the same payload with
// exponential backoff. The row stays publishing until an attempt ends
// terminally.
func (w *Worker) scheduleRetry(ctx context.Context, pp *models.PostPlatform, payload queue.PublishPostPayload, cause error) error {
	if err := w.pp.RecordError(ctx, pp.ID, cause.Error()); err != nil {
		return err
	}

	retry := payload
	retry.Attempt++
	delay := w.retryDelay(payload.Attempt)

	if _, err := w.enqueuer.EnqueuePublish(ctx, retry, delay); err != nil {
		// Queue unavailable: propagate so this delivery of the current
		// attempt is redelivered instead of losing the retry.
		return err
	}

	metrics.PublishRetries.WithLabelValues(pp.Platform).Inc()
	log.Printf("delivery %d attempt %d failed (%s), retrying in %s", pp.ID, payload.Attempt, cause, delay)
	return nil
}

func (w *Worker) failTerminal(ctx context.Context, pp *models.PostPlatform, message string) error {
	ok, err := w.pp.MarkFailed(ctx, pp.ID, message)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("delivery %d already terminal, keeping existing outcome", pp.ID)
	}
	return w.rollupPost(ctx, pp.PostID)
}

// rollupPost recomputes the aggregate post status from a fresh read of all
// sibling rows. Racing siblings compute the same pure function over the same
// snapshot space, so the last write is always consistent.
func (w *Worker) rollupPost(ctx context.Context, postID int64) error {
	siblings, err := w.pp.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}

	statuses := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		statuses = append(statuses, sibling.Status)
	}

	return w.pr.UpdateStatus(ctx, postID, Rollup(statuses))
}
