package transfer

type PostCreation struct {
	Content     string   `json:"content"`
	Hashtags    []string `json:"hashtags"`
	MediaURLs   []string `json:"media_urls"`
	AccountIDs  []int64  `json:"account_ids"`
	ScheduledAt string   `json:"scheduled_at,omitempty"`
	Optimize    bool     `json:"optimize,omitempty"`
}

type ScheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

type PlatformStatus struct {
	ID            int64  `json:"id"`
	Platform      string `json:"platform"`
	Status        string `json:"status"`
	RemotePostID  string `json:"remote_post_id,omitempty"`
	RemotePostURL string `json:"remote_post_url,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type PostStatus struct {
	PostID    int64            `json:"post_id"`
	Status    string           `json:"status"`
	Platforms []PlatformStatus `json:"platforms"`
}
