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

const xAPIBase = "https://api.x.com/2"

// XAdapter posts text tweets through the X v2 API.
type XAdapter struct {
	client  *http.Client
	apiBase string
}

func NewXAdapter() *XAdapter {
	return &XAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: xAPIBase,
	}
}

func (a *XAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	body, err := json.Marshal(transfer.XCreateTweetRequest{Text: content.Caption()})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiBase+"/tweets", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("x request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.XCreateTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("x response decode failed: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		message := result.Detail
		if message == "" {
			message = fmt.Sprintf("x returned status %d", resp.StatusCode)
		}
		return nil, classifyStatus(resp.StatusCode, "x: "+message)
	}
	if result.Data.ID == "" {
		return nil, permanentErr("x returned no tweet id")
	}

	return &PublishResult{
		RemoteID:  result.Data.ID,
		RemoteURL: fmt.Sprintf("https://x.com/i/web/status/%s", result.Data.ID),
	}, nil
}

func (a *XAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+"/users/me?user.fields=public_metrics", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("x metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.XUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, "x: "+result.Detail)
	}

	return &Metrics{
		Followers: result.Data.PublicMetrics.FollowersCount,
		Following: result.Data.PublicMetrics.FollowingCount,
		Posts:     result.Data.PublicMetrics.TweetCount,
	}, nil
}
