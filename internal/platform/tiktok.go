package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/postloom/postloom/internal/transfer"
)

const tiktokAPIBase = "https://open.tiktokapis.com/v2"

// TiktokAdapter publishes videos through the TikTok content posting API.
// TikTok pulls the video from a public URL, so media must already be hosted.
type TiktokAdapter struct {
	client  *http.Client
	apiBase string
}

func NewTiktokAdapter() *TiktokAdapter {
	return &TiktokAdapter{
		client:  &http.Client{Timeout: 60 * time.Second},
		apiBase: tiktokAPIBase,
	}
}

func (a *TiktokAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	if len(content.MediaURLs) == 0 {
		return nil, permanentErr("tiktok requires a video url")
	}

	uploadRequest := transfer.TiktokVideoUploadRequest{
		PostInfo: transfer.TiktokVideoPostInfo{
			Title:                 content.Caption(),
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: content.MediaURLs[0],
		},
	}

	body, err := json.Marshal(uploadRequest)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiBase+"/post/publish/video/init/", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("tiktok request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.TiktokUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("tiktok response decode failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := result.Error.Message
		if message == "" {
			message = fmt.Sprintf("tiktok returned status %d", resp.StatusCode)
		}
		return nil, classifyStatus(resp.StatusCode, "tiktok: "+message)
	}
	if result.Data.PublishID == "" {
		return nil, permanentErr("tiktok returned no publish id")
	}

	// TikTok processes the pulled video asynchronously; there is no stable
	// permalink at init time, only the publish id.
	return &PublishResult{RemoteID: result.Data.PublishID}, nil
}

func (a *TiktokAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	endpoint := a.apiBase + "/user/info/?fields=open_id,follower_count,following_count,video_count"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("tiktok metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.TiktokUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, "tiktok: "+result.Error.Message)
	}

	return &Metrics{
		Followers: result.Data.User.FollowerCount,
		Following: result.Data.User.FollowingCount,
		Posts:     result.Data.User.VideoCount,
	}, nil
}
