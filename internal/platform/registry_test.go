package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{}

func (stubAdapter) Publish(ctx context.Context, creds Credentials, content Content) (*PublishResult, error) {
	return &PublishResult{}, nil
}

func (stubAdapter) Metrics(ctx context.Context, creds Credentials) (*Metrics, error) {
	return &Metrics{}, nil
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	r.Register(X, stubAdapter{})

	adapter, err := r.Get("x")
	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestRegistryGetUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(X, stubAdapter{})

	_, err := r.Get("myspace")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Contains(t, err.Error(), "myspace")
}

func TestRegistryIsSupported(t *testing.T) {
	r := NewRegistry()
	r.Register(LinkedIn, stubAdapter{})

	assert.True(t, r.IsSupported("linkedin"))
	assert.False(t, r.IsSupported("x"))
	assert.False(t, r.IsSupported(""))
}

func TestRegistrySupportedSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(YouTube, stubAdapter{})
	r.Register(Instagram, stubAdapter{})
	r.Register(X, stubAdapter{})

	assert.Equal(t, []string{"instagram", "x", "youtube"}, r.Supported())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&PublishError{Retryable: true, Message: "rate limited"}))
	assert.False(t, IsRetryable(&PublishError{Retryable: false, Message: "bad token"}))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("publishing: %w", &PublishError{Retryable: true, Message: "timeout"})
	assert.True(t, IsRetryable(wrapped))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{401, false},
		{403, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{400, false},
		{404, false},
		{422, false},
	}

	for _, tt := range tests {
		err := classifyStatus(tt.status, "upstream error")
		assert.Equal(t, tt.retryable, err.Retryable, "status %d", tt.status)
	}
}

func TestContentCaption(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{
			name:    "text only",
			content: Content{Text: "hello"},
			want:    "hello",
		},
		{
			name:    "text with hashtags",
			content: Content{Text: "hello", Hashtags: []string{"go", "release"}},
			want:    "hello\n\n#go #release",
		},
		{
			name:    "hashtags already prefixed",
			content: Content{Text: "hello", Hashtags: []string{"#go"}},
			want:    "hello\n\n#go",
		},
		{
			name:    "hashtags only",
			content: Content{Hashtags: []string{"go"}},
			want:    "#go",
		},
		{
			name:    "empty hashtag entries dropped",
			content: Content{Text: "hello", Hashtags: []string{"", "#"}},
			want:    "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.content.Caption())
		})
	}
}

func TestVideoTitleTruncatesOnRuneBoundary(t *testing.T) {
	text := strings.Repeat("ü", 120)

	got := title(Content{Text: text})
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 100), got)
}

func TestVideoTitleUsesFirstLine(t *testing.T) {
	got := title(Content{Text: "headline\nrest of the post"})
	assert.Equal(t, "headline", got)
}
