package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/postloom/postloom/internal/transfer"
)

const linkedinAPIBase = "https://api.linkedin.com/v2"

// LinkedInAdapter publishes member shares through the ugcPosts API.
type LinkedInAdapter struct {
	client  *http.Client
	apiBase string
}

func NewLinkedInAdapter() *LinkedInAdapter {
	return &LinkedInAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: linkedinAPIBase,
	}
}

func (a *LinkedInAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	author := "urn:li:person:" + creds.AccountID

	shareContent := transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInShareText{Text: content.Caption()},
		ShareMediaCategory: "NONE",
	}
	if len(content.MediaURLs) > 0 {
		shareContent.ShareMediaCategory = "ARTICLE"
		for _, mediaURL := range content.MediaURLs {
			shareContent.Media = append(shareContent.Media, transfer.LinkedInShareItem{
				Status:      "READY",
				OriginalURL: mediaURL,
			})
		}
	}

	body, err := json.Marshal(transfer.LinkedInPostRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.LinkedInShareContent{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiBase+"/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("linkedin request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.LinkedInPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("linkedin response decode failed: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("linkedin returned status %d", resp.StatusCode)
		}
		return nil, classifyStatus(resp.StatusCode, "linkedin: "+message)
	}
	if result.ID == "" {
		return nil, permanentErr("linkedin returned no share id")
	}

	return &PublishResult{
		RemoteID:  result.ID,
		RemoteURL: fmt.Sprintf("https://www.linkedin.com/feed/update/%s", result.ID),
	}, nil
}

func (a *LinkedInAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	endpoint := fmt.Sprintf("%s/networkSizes/%s?edgeType=CONNECTIONS",
		a.apiBase, url.PathEscape("urn:li:person:"+creds.AccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("linkedin metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.LinkedInNetworkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, "linkedin: "+result.Message)
	}

	return &Metrics{Followers: result.FirstDegreeSize}, nil
}
