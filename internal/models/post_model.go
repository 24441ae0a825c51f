package models

import (
	"time"

	"github.com/lib/pq"
)

// Post is a logical content unit, independent of any target platform.
// Delivery state per platform lives on PostPlatform.
type Post struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Content     string         `db:"content" json:"content"`
	MediaURLs   pq.StringArray `db:"media_urls" json:"media_urls"`
	Hashtags    pq.StringArray `db:"hashtags" json:"hashtags"`
	ScheduledAt *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Status      string         `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft              = "draft"
	PostStatusScheduled          = "scheduled"
	PostStatusPublishing         = "publishing"
	PostStatusPublished          = "published"
	PostStatusFailed             = "failed"
	PostStatusPartiallyPublished = "partially_published"
)

// PostPlatform is the per-target delivery record for a Post. Exactly one row
// exists per (post, account) pair; its status only ever moves forward.
type PostPlatform struct {
	ID            int64      `db:"id" json:"id"`
	PostID        int64      `db:"post_id" json:"post_id"`
	AccountID     int64      `db:"account_id" json:"account_id"`
	Platform      string     `db:"platform" json:"platform"`
	Status        string     `db:"status" json:"status"`
	RemotePostID  string     `db:"remote_post_id" json:"remote_post_id,omitempty"`
	RemotePostURL string     `db:"remote_post_url" json:"remote_post_url,omitempty"`
	ErrorMessage  string     `db:"error_message" json:"error_message,omitempty"`
	AttemptCount  int        `db:"attempt_count" json:"attempt_count"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PlatformStatusPending    = "pending"
	PlatformStatusPublishing = "publishing"
	PlatformStatusPublished  = "published"
	PlatformStatusFailed     = "failed"
)

var platformStatusRank = map[string]int{
	PlatformStatusPending:    0,
	PlatformStatusPublishing: 1,
	PlatformStatusPublished:  2,
	PlatformStatusFailed:     2,
}

// IsTerminalPlatformStatus reports whether no further transition is allowed.
func IsTerminalPlatformStatus(status string) bool {
	return status == PlatformStatusPublished || status == PlatformStatusFailed
}

// CanTransition reports whether moving from one delivery status to another
// respects the forward-only ordering. Re-writing the same non-terminal status
// is allowed so at-least-once job delivery stays idempotent.
func CanTransition(from, to string) bool {
	fromRank, ok := platformStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := platformStatusRank[to]
	if !ok {
		return false
	}
	if IsTerminalPlatformStatus(from) {
		return false
	}
	return toRank >= fromRank
}
