package transfer

type LinkedInShareText struct {
	Text string `json:"text"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInShareText   `json:"shareCommentary"`
	ShareMediaCategory string              `json:"shareMediaCategory"`
	Media              []LinkedInShareItem `json:"media,omitempty"`
}

type LinkedInShareItem struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type LinkedInPostRequest struct {
	Author          string                          `json:"author"`
	LifecycleState  string                          `json:"lifecycleState"`
	SpecificContent map[string]LinkedInShareContent `json:"specificContent"`
	Visibility      map[string]string               `json:"visibility"`
}

type LinkedInPostResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type LinkedInNetworkResponse struct {
	FirstDegreeSize int64  `json:"firstDegreeSize"`
	Message         string `json:"message,omitempty"`
}
