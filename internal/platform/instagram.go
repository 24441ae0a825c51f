package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/postloom/postloom/internal/transfer"
)

const instagramAPIBase = "https://graph.facebook.com/v19.0"

// InstagramAdapter publishes through the Instagram Graph API: a media
// container is created from a public media URL, then published.
type InstagramAdapter struct {
	client  *http.Client
	apiBase string
}

func NewInstagramAdapter() *InstagramAdapter {
	return &InstagramAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: instagramAPIBase,
	}
}

func (a *InstagramAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	if len(content.MediaURLs) == 0 {
		return nil, permanentErr("instagram requires at least one media url")
	}

	containerID, err := a.createContainer(ctx, creds, content)
	if err != nil {
		return nil, err
	}

	mediaID, err := a.publishContainer(ctx, creds, containerID)
	if err != nil {
		return nil, err
	}

	permalink, err := a.fetchPermalink(ctx, creds, mediaID)
	if err != nil {
		// The post is live at this point; a missing permalink is not a failure.
		slog.Info(err.Error())
		permalink = ""
	}

	return &PublishResult{RemoteID: mediaID, RemoteURL: permalink}, nil
}

func (a *InstagramAdapter) createContainer(ctx context.Context, creds Credentials, content Content) (string, error) {
	params := url.Values{}
	params.Set("image_url", content.MediaURLs[0])
	params.Set("caption", content.Caption())
	params.Set("access_token", creds.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media", a.apiBase, creds.AccountID)
	media, err := a.postForm(ctx, endpoint, params)
	if err != nil {
		return "", err
	}
	return media.ID, nil
}

func (a *InstagramAdapter) publishContainer(ctx context.Context, creds Credentials, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", creds.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", a.apiBase, creds.AccountID)
	media, err := a.postForm(ctx, endpoint, params)
	if err != nil {
		return "", err
	}
	return media.ID, nil
}

func (a *InstagramAdapter) postForm(ctx context.Context, endpoint string, params url.Values) (*transfer.InstagramMediaResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("instagram request failed: %v", err)
	}
	defer resp.Body.Close()

	var media transfer.InstagramMediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("instagram response decode failed: %v", err)
	}

	if media.Error != nil {
		// The Graph API marks transient faults explicitly.
		if media.Error.IsTransient {
			return nil, retryableErr("instagram: %s", media.Error.Message)
		}
		return nil, classifyStatus(resp.StatusCode, fmt.Sprintf("instagram: %s", media.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, fmt.Sprintf("instagram returned status %d", resp.StatusCode))
	}
	if media.ID == "" {
		return nil, permanentErr("instagram returned no media id")
	}

	return &media, nil
}

func (a *InstagramAdapter) fetchPermalink(ctx context.Context, creds Credentials, mediaID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", a.apiBase, mediaID, url.QueryEscape(creds.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result transfer.InstagramPermalinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Permalink, nil
}

func (a *InstagramAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=followers_count,follows_count,media_count&access_token=%s",
		a.apiBase, creds.AccountID, url.QueryEscape(creds.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("instagram metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	var fields transfer.InstagramAccountFields
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if fields.Error != nil {
		return nil, classifyStatus(resp.StatusCode, fmt.Sprintf("instagram: %s", fields.Error.Message))
	}

	return &Metrics{
		Followers: fields.FollowersCount,
		Following: fields.FollowsCount,
		Posts:     fields.MediaCount,
	}, nil
}
