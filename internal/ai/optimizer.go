package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const systemPrompt = "You are a social media copywriter. Rewrite the given post " +
	"to maximize engagement for the listed platforms while keeping the original " +
	"meaning and tone. Suggest up to five relevant hashtags without the # prefix."

// OptimizedContent is the structured result of a content optimization pass.
type OptimizedContent struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// ContentOptimizer rewrites post copy before it is stored. Implementations
// must treat failures as advisory: callers fall back to the original text.
type ContentOptimizer interface {
	Optimize(ctx context.Context, content string, platforms []string) (*OptimizedContent, error)
}

type geminiOptimizer struct {
	apiKey string
	model  string
}

func NewGeminiOptimizer(apiKey string) ContentOptimizer {
	return &geminiOptimizer{apiKey: apiKey, model: defaultModel}
}

func (g *geminiOptimizer) Optimize(ctx context.Context, content string, platforms []string) (*OptimizedContent, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	prompt := "Platforms: " + strings.Join(platforms, ", ") + "\n\nPost:\n" + content

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"content": {
					Type:        "string",
					Description: "The rewritten post text",
				},
				"hashtags": {
					Type:        "array",
					Items:       &genai.Schema{Type: "string"},
					Description: "Suggested hashtags without the # prefix",
				},
			},
			Required:         []string{"content", "hashtags"},
			PropertyOrdering: []string{"content", "hashtags"},
		},
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &OptimizedContent{Content: content}, nil
	}

	var opt OptimizedContent
	if err := json.Unmarshal([]byte(result.Text()), &opt); err != nil {
		slog.Info(err.Error())
		return &OptimizedContent{Content: strings.TrimSpace(result.Text())}, nil
	}
	if strings.TrimSpace(opt.Content) == "" {
		opt.Content = content
	}
	return &opt, nil
}
