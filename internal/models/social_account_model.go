package models

import (
	"encoding/json"
	"time"
)

// SocialAccount is a user's connection to one platform. Tokens are stored
// encrypted and wiped on disconnect; the row itself is never deleted so
// historical metrics keep their association.
type SocialAccount struct {
	ID                int64           `db:"id" json:"id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	Platform          string          `db:"platform" json:"platform"`
	PlatformAccountID string          `db:"platform_account_id" json:"platform_account_id"`
	AccountName       string          `db:"account_name" json:"account_name"`
	AccessToken       string          `db:"access_token" json:"-"`
	RefreshToken      string          `db:"refresh_token" json:"-"`
	TokenExpiresAt    *time.Time      `db:"token_expires_at" json:"token_expires_at,omitempty"`
	IsConnected       bool            `db:"is_connected" json:"is_connected"`
	Metadata          json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// AccountMetrics is one snapshot of platform-side account numbers, written by
// the data sync worker.
type AccountMetrics struct {
	ID             int64     `db:"id" json:"id"`
	AccountID      int64     `db:"account_id" json:"account_id"`
	Followers      int64     `db:"followers" json:"followers"`
	Following      int64     `db:"following" json:"following"`
	Posts          int64     `db:"posts" json:"posts"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	CollectedAt    time.Time `db:"collected_at" json:"collected_at"`
}
