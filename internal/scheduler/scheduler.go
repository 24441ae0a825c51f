package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/postloom/postloom/internal/repository"
)

// Caller-fixable scheduling failures, returned synchronously and never
// retried by the queue.
var (
	ErrInvalidSchedule    = errors.New("scheduled time must be a valid instant in the future")
	ErrPostNotFound       = errors.New("post not found")
	ErrNoPlatforms        = errors.New("post has no platforms configured")
	ErrNoPendingPlatforms = errors.New("post has no pending platforms left to schedule")
)

// scheduledTimeLayout is the fallback for clients that send local datetimes
// without an offset.
const scheduledTimeLayout = "2006-01-02T15:04"

type ScheduledJob struct {
	Platform string `json:"platform"`
	JobID    string `json:"job_id"`
}

type ScheduleResult struct {
	PostID        int64          `json:"id"`
	ScheduledAt   time.Time      `json:"scheduled_at"`
	Status        string         `json:"status"`
	ScheduledJobs []ScheduledJob `json:"scheduled_jobs"`
}

// Scheduler converts a "publish later" request into one delayed queue job per
// delivery row. All collaborators are injected so tests can substitute fakes.
type Scheduler struct {
	pr       repository.PostRepository
	pp       repository.PostPlatformRepository
	registry *platform.Registry
	enqueuer queue.Enqueuer
	now      func() time.Time
}

func New(
	pr repository.PostRepository,
	pp repository.PostPlatformRepository,
	registry *platform.Registry,
	enqueuer queue.Enqueuer) *Scheduler {
	return &Scheduler{
		pr:       pr,
		pp:       pp,
		registry: registry,
		enqueuer: enqueuer,
		now:      time.Now,
	}
}

// SchedulePost validates the request, persists scheduling intent, and
// enqueues one publish job per pending delivery row. The delay is computed
// once and shared by every job so all platforms target the same instant.
//
// Re-running on a post that is already scheduled is the idempotent retry
// path: rows that moved past pending are left alone and get no new job, and
// a post with no pending rows at all is rejected rather than rewritten.
func (s *Scheduler) SchedulePost(ctx context.Context, userID, postID int64, scheduledAt string) (*ScheduleResult, error) {
	when, err := parseScheduledTime(scheduledAt)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	now := s.now()
	if !when.After(now) {
		return nil, ErrInvalidSchedule
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("loading post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if userID != 0 && post.UserID != userID {
		return nil, ErrPostNotFound
	}

	platforms, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("loading post platforms: %w", err)
	}
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	// Unsupported targets fail the whole request before anything is queued.
	for _, pp := range platforms {
		if !s.registry.IsSupported(pp.Platform) {
			return nil, fmt.Errorf("%w: %s", platform.ErrUnsupportedPlatform, pp.Platform)
		}
	}

	// Only rows still pending get a job. Once every row has moved past
	// pending the post status belongs to the delivery outcome and must not
	// be dragged back to scheduled.
	pending := make([]*models.PostPlatform, 0, len(platforms))
	for _, pp := range platforms {
		if pp.Status == models.PlatformStatusPending {
			pending = append(pending, pp)
		}
	}
	if len(pending) == 0 {
		return nil, ErrNoPendingPlatforms
	}

	// Scheduling intent is persisted before any job exists, so a crash after
	// a partial enqueue leaves a post that can simply be scheduled again.
	if err := s.pr.UpdateSchedule(ctx, postID, when); err != nil {
		return nil, fmt.Errorf("persisting schedule: %w", err)
	}

	delay := when.Sub(now)
	if delay < 0 {
		delay = 0
	}

	result := &ScheduleResult{
		PostID:      postID,
		ScheduledAt: when,
		Status:      models.PostStatusScheduled,
	}

	for _, pp := range pending {
		payload := queue.PublishPostPayload{
			PostID:     postID,
			PlatformID: pp.ID,
			AccountID:  pp.AccountID,
			Attempt:    1,
		}
		jobID, err := s.enqueuer.EnqueuePublish(ctx, payload, delay)
		if err != nil {
			return nil, fmt.Errorf("enqueuing publish job for %s: %w", pp.Platform, err)
		}

		result.ScheduledJobs = append(result.ScheduledJobs, ScheduledJob{
			Platform: pp.Platform,
			JobID:    jobID,
		})
	}

	return result, nil
}

func parseScheduledTime(value string) (time.Time, error) {
	if when, err := time.Parse(time.RFC3339, value); err == nil {
		return when, nil
	}
	when, err := time.Parse(scheduledTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, value)
	}
	return when, nil
}
