package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusPostRepo struct {
	posts       map[int64]*models.Post
	owners      map[int64]int64
	removeCalls int
}

func (f *statusPostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}

func (f *statusPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *statusPostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (f *statusPostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return f.owners[postID] == userID, nil
}

func (f *statusPostRepo) UpdateStatus(ctx context.Context, postID int64, status string) error {
	return nil
}

func (f *statusPostRepo) UpdateSchedule(ctx context.Context, postID int64, scheduledAt time.Time) error {
	return nil
}

func (f *statusPostRepo) Remove(ctx context.Context, id int64) error {
	f.removeCalls++
	delete(f.posts, id)
	return nil
}

type statusPlatformRepo struct {
	rows      []*models.PostPlatform
	listCalls int
}

func (f *statusPlatformRepo) Create(ctx context.Context, tx *sql.Tx, pp *models.PostPlatform) (int64, error) {
	return 0, nil
}

func (f *statusPlatformRepo) GetByID(ctx context.Context, id int64) (*models.PostPlatform, error) {
	return nil, nil
}

func (f *statusPlatformRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostPlatform, error) {
	f.listCalls++
	var rows []*models.PostPlatform
	for _, row := range f.rows {
		if row.PostID == postID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *statusPlatformRepo) MarkPublishing(ctx context.Context, id int64, attempt int) (bool, error) {
	return false, nil
}

func (f *statusPlatformRepo) MarkPublished(ctx context.Context, id int64, remotePostID, remotePostURL string, publishedAt time.Time) (bool, error) {
	return false, nil
}

func (f *statusPlatformRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) (bool, error) {
	return false, nil
}

func (f *statusPlatformRepo) RecordError(ctx context.Context, id int64, errorMessage string) error {
	return nil
}

// memStatusCache round-trips payloads through JSON like the redis cache does.
type memStatusCache struct {
	entries map[int64][]byte
	gets    int
	sets    int
}

func newMemStatusCache() *memStatusCache {
	return &memStatusCache{entries: map[int64][]byte{}}
}

func (f *memStatusCache) GetStatus(ctx context.Context, postID int64, dest any) bool {
	f.gets++
	bs, ok := f.entries[postID]
	if !ok {
		return false
	}
	return json.Unmarshal(bs, dest) == nil
}

func (f *memStatusCache) SetStatus(ctx context.Context, postID int64, value any) {
	f.sets++
	bs, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.entries[postID] = bs
}

func (f *memStatusCache) Invalidate(ctx context.Context, postID int64) {
	delete(f.entries, postID)
}

type statusHarness struct {
	svc   PostService
	posts *statusPostRepo
	rows  *statusPlatformRepo
	cache *memStatusCache
}

func newStatusHarness(t *testing.T) *statusHarness {
	t.Helper()

	posts := &statusPostRepo{
		posts: map[int64]*models.Post{
			1: {ID: 1, UserID: 7, Content: "hello", Status: models.PostStatusPublishing},
		},
		owners: map[int64]int64{1: 7},
	}
	rows := &statusPlatformRepo{rows: []*models.PostPlatform{
		{ID: 10, PostID: 1, AccountID: 100, Platform: "x", Status: models.PlatformStatusPublished, RemotePostID: "tw-1"},
		{ID: 11, PostID: 1, AccountID: 101, Platform: "linkedin", Status: models.PlatformStatusPublishing},
	}}
	memCache := newMemStatusCache()

	svc := NewPostService(nil, posts, rows, nil, platform.NewRegistry(), nil, memCache)

	return &statusHarness{svc: svc, posts: posts, rows: rows, cache: memCache}
}

func TestStatusAssemblesAndCaches(t *testing.T) {
	h := newStatusHarness(t)

	status, err := h.svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(1), status.PostID)
	assert.Equal(t, models.PostStatusPublishing, status.Status)
	require.Len(t, status.Platforms, 2)
	assert.Equal(t, "tw-1", status.Platforms[0].RemotePostID)
	assert.Equal(t, 1, h.cache.sets)
}

func TestStatusServesFromCacheForOwner(t *testing.T) {
	h := newStatusHarness(t)

	_, err := h.svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, 1, h.rows.listCalls)

	status, err := h.svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublishing, status.Status)

	// The second read is a cache hit and never touches the rows.
	assert.Equal(t, 1, h.rows.listCalls)
	assert.Equal(t, 2, h.cache.gets)
}

func TestStatusCachedEntryStillChecksOwnership(t *testing.T) {
	h := newStatusHarness(t)

	// The owner polls first, warming the cache.
	_, err := h.svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotEmpty(t, h.cache.entries)

	// Another user asking for the same post must not be served the cached
	// payload.
	gets := h.cache.gets
	_, err = h.svc.Status(context.Background(), 1, 8)
	assert.Error(t, err)
	assert.Equal(t, gets, h.cache.gets)
}

func TestStatusRejectsAnonymousUser(t *testing.T) {
	h := newStatusHarness(t)

	_, err := h.svc.Status(context.Background(), 1, 0)
	assert.Error(t, err)
	assert.Zero(t, h.cache.gets)
}

func TestRemoveRefusesDeliveredPost(t *testing.T) {
	h := newStatusHarness(t)

	// Harness post 1 is mid-publish; its delivery record must survive.
	err := h.svc.Remove(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrPostDelivered)
	assert.Zero(t, h.posts.removeCalls)
}

func TestRemoveDraftPostDropsCache(t *testing.T) {
	h := newStatusHarness(t)
	h.posts.posts[1].Status = models.PostStatusDraft

	_, err := h.svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotEmpty(t, h.cache.entries)

	require.NoError(t, h.svc.Remove(context.Background(), 7, 1))
	assert.Equal(t, 1, h.posts.removeCalls)
	assert.Empty(t, h.cache.entries)
}
