package transfer

type XCreateTweetRequest struct {
	Text string `json:"text"`
}

type XCreateTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type XUserResponse struct {
	Data struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount int64 `json:"followers_count"`
			FollowingCount int64 `json:"following_count"`
			TweetCount     int64 `json:"tweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}
