package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeAdapter uploads the first media URL as a public video. The media is
// streamed straight from its hosted URL into the upload call.
type YouTubeAdapter struct {
	client *http.Client
}

func NewYouTubeAdapter() *YouTubeAdapter {
	return &YouTubeAdapter{client: &http.Client{Timeout: 10 * time.Minute}}
}

func (a *YouTubeAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	if len(content.MediaURLs) == 0 {
		return nil, permanentErr("youtube requires a video url")
	}

	service, err := a.newService(ctx, creds)
	if err != nil {
		return nil, retryableErr("youtube service init failed: %v", err)
	}

	resp, err := a.client.Get(content.MediaURLs[0])
	if err != nil {
		slog.Info(err.Error())
		return nil, retryableErr("youtube media download failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, retryableErr("youtube media download returned status %d", resp.StatusCode)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title(content),
			Description: content.Caption(),
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(resp.Body).Context(ctx).Do()
	if err != nil {
		return nil, classifyYouTubeError(err)
	}

	return &PublishResult{
		RemoteID:  uploaded.Id,
		RemoteURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}, nil
}

func (a *YouTubeAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	service, err := a.newService(ctx, creds)
	if err != nil {
		return nil, retryableErr("youtube service init failed: %v", err)
	}

	channels, err := service.Channels.List([]string{"statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classifyYouTubeError(err)
	}
	if len(channels.Items) == 0 {
		return nil, permanentErr("youtube returned no channel for account")
	}

	stats := channels.Items[0].Statistics
	return &Metrics{
		Followers: int64(stats.SubscriberCount),
		Posts:     int64(stats.VideoCount),
	}, nil
}

func (a *YouTubeAdapter) newService(ctx context.Context, creds Credentials) (*youtube.Service, error) {
	token := &oauth2.Token{AccessToken: creds.AccessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	return youtube.NewService(ctx, option.WithHTTPClient(client))
}

func classifyYouTubeError(err error) *PublishError {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return classifyStatus(apiErr.Code, fmt.Sprintf("youtube: %s", apiErr.Message))
	}
	return retryableErr("youtube: %v", err)
}

// title derives a video title from the first line of the post text, since the
// platform-independent Content carries no separate title field.
func title(content Content) string {
	const maxTitle = 100
	text := content.Text
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	if text == "" {
		text = "Untitled upload " + strconv.FormatInt(time.Now().Unix(), 10)
	}
	if runes := []rune(text); len(runes) > maxTitle {
		text = string(runes[:maxTitle])
	}
	return text
}
