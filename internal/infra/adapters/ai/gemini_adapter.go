// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter is the optional second provider, wired when a Gemini API
// key is configured.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseUrl, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseUrl,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	models := g.client.Models.All(ctx)
	var out []string
	for m := range models {
		if m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	ctx := context.Background()
	m, err := g.client.Models.Get(ctx, model, nil)
	if err != nil {
		// Return minimal info on error so callers aren't blocked.
		return adapter.ModelInfo{Name: model}, nil
	}
	return adapter.ModelInfo{
		Name:        m.Name,
		Description: m.Description,
		MaxTokens:   int(m.InputTokenLimit),
		Supports:    m.SupportedActions,
	}, nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	contents := toGenAIHistory(messages)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(
		ctx,
		modelOrDefault(model, g.defaultModel),
		toGenAIHistory(messages),
		&genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)},
	)
	if err != nil {
		metrics.ObserveChatUsage("gemini", model, 0, 0, 0, int(time.Since(start).Milliseconds()), false)
		return "", err
	}
	text := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	in, out, total := 0, 0, 0
	if resp.UsageMetadata != nil {
		in = int(resp.UsageMetadata.PromptTokenCount)
		out = int(resp.UsageMetadata.CandidatesTokenCount)
		total = int(resp.UsageMetadata.TotalTokenCount)
	}
	metrics.ObserveChatUsage("gemini", model, in, out, total, int(time.Since(start).Milliseconds()), true)
	return text, nil
}

func (g *GeminiAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message, onDelta adapter.StreamHandler) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	start := time.Now()
	var full strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(
		ctx,
		modelOrDefault(model, g.defaultModel),
		toGenAIHistory(messages),
		&genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)},
	) {
		if err != nil {
			metrics.ObserveChatUsage("gemini", model, 0, 0, 0, int(time.Since(start).Milliseconds()), false)
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.Text == "" {
				continue
			}
			metrics.IncStreamChunk("gemini", model)
			full.WriteString(p.Text)
			if onDelta != nil {
				onDelta(p.Text)
			}
		}
	}
	metrics.ObserveChatUsage("gemini", model, 0, 0, 0, int(time.Since(start).Milliseconds()), true)
	return full.String(), nil
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// Gemini has no separate system role in history; treat as a
			// user instruction.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
