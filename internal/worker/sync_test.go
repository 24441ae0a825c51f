package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncPayload() queue.DataSyncPayload {
	return queue.DataSyncPayload{AccountID: 100, Platform: "x"}
}

func TestSyncAccountData(t *testing.T) {
	h := newHarness(t)

	err := h.worker.SyncAccountData(context.Background(), syncPayload())
	require.NoError(t, err)

	require.Len(t, h.metrics.created, 1)
	snapshot := h.metrics.created[0]
	assert.Equal(t, int64(100), snapshot.AccountID)
	assert.Equal(t, int64(42), snapshot.Followers)
	assert.Equal(t, int64(7), snapshot.Following)
	assert.Equal(t, int64(3), snapshot.Posts)
	assert.False(t, snapshot.CollectedAt.IsZero())
	assert.Equal(t, 1, h.adapter.metricsCalls)
}

func TestSyncSkipsDisconnectedAccount(t *testing.T) {
	h := newHarness(t)
	h.accounts.accounts[100].IsConnected = false

	err := h.worker.SyncAccountData(context.Background(), syncPayload())
	require.NoError(t, err)

	assert.Empty(t, h.metrics.created)
	assert.Equal(t, 0, h.adapter.metricsCalls)
}

func TestSyncMissingAccountDropped(t *testing.T) {
	h := newHarness(t)
	delete(h.accounts.accounts, 100)

	err := h.worker.SyncAccountData(context.Background(), syncPayload())
	require.NoError(t, err)
	assert.Empty(t, h.metrics.created)
}

func TestSyncRetryableErrorPropagates(t *testing.T) {
	h := newHarness(t)
	h.adapter.metricsErr = &platform.PublishError{Retryable: true, Message: "upstream 503"}

	err := h.worker.SyncAccountData(context.Background(), syncPayload())
	require.Error(t, err)
	assert.Empty(t, h.metrics.created)
}

func TestSyncPermanentErrorSwallowed(t *testing.T) {
	h := newHarness(t)
	h.adapter.metricsErr = &platform.PublishError{Retryable: false, Message: "token revoked"}

	err := h.worker.SyncAccountData(context.Background(), syncPayload())
	require.NoError(t, err)
	assert.Empty(t, h.metrics.created)
}

func TestHandleDataSyncTaskMalformedPayload(t *testing.T) {
	h := newHarness(t)

	task := asynq.NewTask(queue.TaskTypeDataSync, []byte("nope"))
	err := h.worker.HandleDataSyncTask(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
