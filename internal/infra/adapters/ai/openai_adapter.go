// File: internal/infra/adapters/ai/openai_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter against any
// OpenAI-compatible Chat Completions endpoint. The default wiring points
// it at Zhipu's GLM gateway; base "" talks to api.openai.com.
type OpenAIAdapter struct {
	client   openai.Client
	provider string
	model    string
}

func NewOpenAIAdapter(apiKey, base, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "glm-4"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	provider := "openai"
	if base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")))
		if strings.Contains(base, "bigmodel.cn") {
			provider = "zhipu"
		}
	}
	return &OpenAIAdapter{
		client:   openai.NewClient(opts...),
		provider: provider,
		model:    model,
	}, nil
}

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

func (o *OpenAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	if model == "" {
		model = o.model
	}
	return adapter.ModelInfo{
		Name:        model,
		Description: "OpenAI-compatible Chat Completions model",
		MaxTokens:   0,
		Supports:    []string{"text", "stream"},
	}, nil
}

// CountTokens counts prompt tokens with tiktoken. Models the library does
// not know (glm-*, ...) are counted with the cl100k_base encoding, which
// is close enough for budgeting.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if model == "" {
		model = o.model
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if model == "" {
		model = o.model
	}
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		metrics.ObserveChatUsage(o.provider, model, 0, 0, 0, int(time.Since(start).Milliseconds()), false)
		return "", err
	}
	metrics.ObserveChatUsage(o.provider, model,
		int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens), int(resp.Usage.TotalTokens),
		int(time.Since(start).Milliseconds()), true)
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}

func (o *OpenAIAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message, onDelta adapter.StreamHandler) (string, error) {
	if model == "" {
		model = o.model
	}
	start := time.Now()
	stream := o.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	})
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			metrics.IncStreamChunk(o.provider, model)
			if onDelta != nil {
				onDelta(delta)
			}
		}
	}
	if err := stream.Err(); err != nil {
		metrics.ObserveChatUsage(o.provider, model, 0, 0, 0, int(time.Since(start).Milliseconds()), false)
		return "", err
	}
	metrics.ObserveChatUsage(o.provider, model,
		int(acc.Usage.PromptTokens), int(acc.Usage.CompletionTokens), int(acc.Usage.TotalTokens),
		int(time.Since(start).Milliseconds()), true)

	if len(acc.Choices) > 0 {
		return acc.Choices[0].Message.Content, nil
	}
	return "", nil
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
