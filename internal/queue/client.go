package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is the delay-capable queue contract the scheduler and worker
// depend on. The queue guarantees a task is not delivered before its delay
// elapses; delivery is at-least-once, so handlers must stay idempotent.
type Enqueuer interface {
	EnqueuePublish(ctx context.Context, payload PublishPostPayload, delay time.Duration) (string, error)
	EnqueueDataSync(ctx context.Context, payload DataSyncPayload, delay time.Duration) (string, error)
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &asynqEnqueuer{client: client}
}

func (e *asynqEnqueuer) EnqueuePublish(ctx context.Context, payload PublishPostPayload, delay time.Duration) (string, error) {
	return e.enqueue(ctx, TaskTypePublishPost, payload, delay)
}

func (e *asynqEnqueuer) EnqueueDataSync(ctx context.Context, payload DataSyncPayload, delay time.Duration) (string, error) {
	return e.enqueue(ctx, TaskTypeDataSync, payload, delay)
}

func (e *asynqEnqueuer) enqueue(ctx context.Context, taskType string, payload interface{}, delay time.Duration) (string, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskType, taskPayload)

	info, err := e.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return "", err
	}

	log.Printf("Task scheduled: type=%s id=%s delay=%s", taskType, info.ID, delay)
	return info.ID, nil
}
