package queue

// Task types routed through asynq. One publish task exists per PostPlatform
// row, so platforms of the same post are delivered independently.
const (
	TaskTypePublishPost = "post:publish"
	TaskTypeDataSync    = "account:data_sync"
)

// PublishPostPayload drives one publish attempt for one delivery row.
// Attempt starts at 1 and increments on each retryable re-enqueue.
type PublishPostPayload struct {
	PostID     int64 `json:"post_id"`
	PlatformID int64 `json:"platform_id"`
	AccountID  int64 `json:"account_id"`
	Attempt    int   `json:"attempt"`
}

// DataSyncPayload refreshes stored metrics for one social account.
type DataSyncPayload struct {
	AccountID int64  `json:"account_id"`
	Platform  string `json:"platform"`
}
