package transfer

type InstagramMediaResponse struct {
	ID    string                  `json:"id"`
	Error *InstagramErrorResponse `json:"error,omitempty"`
}

type InstagramPermalinkResponse struct {
	Permalink string `json:"permalink"`
}

type InstagramAccountFields struct {
	FollowersCount int64                   `json:"followers_count"`
	FollowsCount   int64                   `json:"follows_count"`
	MediaCount     int64                   `json:"media_count"`
	Error          *InstagramErrorResponse `json:"error,omitempty"`
}

type InstagramErrorResponse struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	IsTransient  bool   `json:"is_transient"`
	FbtraceID    string `json:"fbtrace_id"`
}
