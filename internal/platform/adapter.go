package platform

import (
	"context"
	"strings"
)

// Platform identifies a publishing target. The supported set is closed; the
// Registry is the single place a string from the outside world becomes one.
type Platform string

const (
	Instagram Platform = "instagram"
	X         Platform = "x"
	LinkedIn  Platform = "linkedin"
	YouTube   Platform = "youtube"
	Tiktok    Platform = "tiktok"
)

// Credentials is what an adapter needs to act on behalf of one account.
// The access token arrives decrypted; adapters never touch storage.
type Credentials struct {
	AccountID   string
	AccessToken string
}

// Content is the platform-independent body of a post.
type Content struct {
	Text      string
	MediaURLs []string
	Hashtags  []string
}

// Caption renders text plus hashtags the way every platform expects them:
// appended on their own line, each prefixed with '#'.
func (c Content) Caption() string {
	if len(c.Hashtags) == 0 {
		return c.Text
	}
	tags := make([]string, 0, len(c.Hashtags))
	for _, h := range c.Hashtags {
		h = strings.TrimPrefix(h, "#")
		if h == "" {
			continue
		}
		tags = append(tags, "#"+h)
	}
	if len(tags) == 0 {
		return c.Text
	}
	if c.Text == "" {
		return strings.Join(tags, " ")
	}
	return c.Text + "\n\n" + strings.Join(tags, " ")
}

// PublishResult is the platform-side identity of a delivered post.
type PublishResult struct {
	RemoteID  string
	RemoteURL string
}

// Metrics is one snapshot of account-level numbers fetched during data sync.
type Metrics struct {
	Followers      int64
	Following      int64
	Posts          int64
	EngagementRate float64
}

// Adapter is the uniform per-platform contract. Publish failures must be
// returned as *PublishError so the worker can tell retryable from terminal.
type Adapter interface {
	Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error)
	Metrics(ctx context.Context, creds Credentials) (*Metrics, error)
}
