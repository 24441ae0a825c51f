package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostRepo struct {
	posts          map[int64]*models.Post
	scheduledCalls int
	scheduledAt    time.Time
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, postID int64, status string) error {
	return nil
}

func (f *fakePostRepo) UpdateSchedule(ctx context.Context, postID int64, scheduledAt time.Time) error {
	f.scheduledCalls++
	f.scheduledAt = scheduledAt
	if post, ok := f.posts[postID]; ok {
		post.Status = models.PostStatusScheduled
		post.ScheduledAt = &scheduledAt
	}
	return nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakePlatformRepo struct {
	rows []*models.PostPlatform
}

func (f *fakePlatformRepo) Create(ctx context.Context, tx *sql.Tx, pp *models.PostPlatform) (int64, error) {
	return 0, nil
}

func (f *fakePlatformRepo) GetByID(ctx context.Context, id int64) (*models.PostPlatform, error) {
	return nil, nil
}

func (f *fakePlatformRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostPlatform, error) {
	var rows []*models.PostPlatform
	for _, row := range f.rows {
		if row.PostID == postID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakePlatformRepo) MarkPublishing(ctx context.Context, id int64, attempt int) (bool, error) {
	return false, nil
}

func (f *fakePlatformRepo) MarkPublished(ctx context.Context, id int64, remotePostID, remotePostURL string, publishedAt time.Time) (bool, error) {
	return false, nil
}

func (f *fakePlatformRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) (bool, error) {
	return false, nil
}

func (f *fakePlatformRepo) RecordError(ctx context.Context, id int64, errorMessage string) error {
	return nil
}

type publishCall struct {
	payload queue.PublishPostPayload
	delay   time.Duration
}

type fakeEnqueuer struct {
	publishes []publishCall
}

func (f *fakeEnqueuer) EnqueuePublish(ctx context.Context, payload queue.PublishPostPayload, delay time.Duration) (string, error) {
	f.publishes = append(f.publishes, publishCall{payload: payload, delay: delay})
	return "job-1", nil
}

func (f *fakeEnqueuer) EnqueueDataSync(ctx context.Context, payload queue.DataSyncPayload, delay time.Duration) (string, error) {
	return "job-2", nil
}

type noopAdapter struct{}

func (noopAdapter) Publish(ctx context.Context, creds platform.Credentials, content platform.Content) (*platform.PublishResult, error) {
	return &platform.PublishResult{}, nil
}

func (noopAdapter) Metrics(ctx context.Context, creds platform.Credentials) (*platform.Metrics, error) {
	return &platform.Metrics{}, nil
}

type schedulerHarness struct {
	scheduler *Scheduler
	posts     *fakePostRepo
	rows      *fakePlatformRepo
	enqueuer  *fakeEnqueuer
	now       time.Time
}

func newHarness(t *testing.T) *schedulerHarness {
	t.Helper()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	posts := &fakePostRepo{posts: map[int64]*models.Post{
		1: {ID: 1, UserID: 7, Content: "hello", Status: models.PostStatusDraft},
	}}
	rows := &fakePlatformRepo{rows: []*models.PostPlatform{
		{ID: 10, PostID: 1, AccountID: 100, Platform: "x", Status: models.PlatformStatusPending},
		{ID: 11, PostID: 1, AccountID: 101, Platform: "linkedin", Status: models.PlatformStatusPending},
		{ID: 12, PostID: 1, AccountID: 102, Platform: "instagram", Status: models.PlatformStatusPending},
	}}
	enqueuer := &fakeEnqueuer{}

	registry := platform.NewRegistry()
	registry.Register(platform.X, noopAdapter{})
	registry.Register(platform.LinkedIn, noopAdapter{})
	registry.Register(platform.Instagram, noopAdapter{})

	s := New(posts, rows, registry, enqueuer)
	s.now = func() time.Time { return now }

	return &schedulerHarness{
		scheduler: s,
		posts:     posts,
		rows:      rows,
		enqueuer:  enqueuer,
		now:       now,
	}
}

func TestSchedulePostEnqueuesOneJobPerPlatform(t *testing.T) {
	h := newHarness(t)
	when := h.now.Add(2 * time.Hour)

	result, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when.Format(time.RFC3339))
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.PostID)
	assert.Equal(t, models.PostStatusScheduled, result.Status)
	assert.True(t, result.ScheduledAt.Equal(when))
	require.Len(t, result.ScheduledJobs, 3)

	// Every platform job shares the delay computed once up front.
	require.Len(t, h.enqueuer.publishes, 3)
	for _, call := range h.enqueuer.publishes {
		assert.Equal(t, 2*time.Hour, call.delay)
		assert.Equal(t, int64(1), call.payload.PostID)
		assert.Equal(t, 1, call.payload.Attempt)
	}

	assert.Equal(t, 1, h.posts.scheduledCalls)
	assert.True(t, h.posts.scheduledAt.Equal(when))
}

func TestSchedulePostRejectsPastTime(t *testing.T) {
	h := newHarness(t)
	when := h.now.Add(-time.Minute)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when.Format(time.RFC3339))
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Empty(t, h.enqueuer.publishes)
	assert.Zero(t, h.posts.scheduledCalls)
}

func TestSchedulePostRejectsNow(t *testing.T) {
	h := newHarness(t)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, h.now.Format(time.RFC3339))
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Empty(t, h.enqueuer.publishes)
}

func TestSchedulePostRejectsMalformedTime(t *testing.T) {
	h := newHarness(t)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, "next tuesday")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Empty(t, h.enqueuer.publishes)
}

func TestSchedulePostAcceptsLocalDatetimeLayout(t *testing.T) {
	h := newHarness(t)

	result, err := h.scheduler.SchedulePost(context.Background(), 7, 1, "2026-03-01T15:30")
	require.NoError(t, err)
	assert.Len(t, result.ScheduledJobs, 3)
}

func TestSchedulePostMissingPost(t *testing.T) {
	h := newHarness(t)
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 99, when)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSchedulePostWrongOwner(t *testing.T) {
	h := newHarness(t)
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	_, err := h.scheduler.SchedulePost(context.Background(), 8, 1, when)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Empty(t, h.enqueuer.publishes)
}

func TestSchedulePostNoPlatforms(t *testing.T) {
	h := newHarness(t)
	h.rows.rows = nil
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when)
	assert.ErrorIs(t, err, ErrNoPlatforms)
}

func TestSchedulePostUnsupportedPlatformFailsWholeRequest(t *testing.T) {
	h := newHarness(t)
	h.rows.rows[1].Platform = "myspace"
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when)
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)

	// Nothing may reach the queue when any target is unsupported.
	assert.Empty(t, h.enqueuer.publishes)
	assert.Zero(t, h.posts.scheduledCalls)
}

func TestSchedulePostAllRowsTerminalLeavesPostAlone(t *testing.T) {
	h := newHarness(t)
	h.posts.posts[1].Status = models.PostStatusPublished
	for _, row := range h.rows.rows {
		row.Status = models.PlatformStatusPublished
	}
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	_, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when)
	assert.ErrorIs(t, err, ErrNoPendingPlatforms)

	// A delivered post keeps its outcome status; nothing is persisted or
	// queued when no row is left to publish.
	assert.Empty(t, h.enqueuer.publishes)
	assert.Zero(t, h.posts.scheduledCalls)
	assert.Equal(t, models.PostStatusPublished, h.posts.posts[1].Status)
}

func TestSchedulePostSkipsRowsPastPending(t *testing.T) {
	h := newHarness(t)
	h.rows.rows[0].Status = models.PlatformStatusPublished
	h.rows.rows[1].Status = models.PlatformStatusFailed
	when := h.now.Add(time.Hour).Format(time.RFC3339)

	result, err := h.scheduler.SchedulePost(context.Background(), 7, 1, when)
	require.NoError(t, err)

	// Re-scheduling only queues work for rows that never left pending.
	require.Len(t, result.ScheduledJobs, 1)
	assert.Equal(t, "instagram", result.ScheduledJobs[0].Platform)
	require.Len(t, h.enqueuer.publishes, 1)
	assert.Equal(t, int64(12), h.enqueuer.publishes[0].payload.PlatformID)
}
