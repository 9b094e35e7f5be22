// File: internal/usecase/classifier.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/ports/adapter"
)

// Compile-time check
var _ Classifier = (*classifier)(nil)

// Classifier judges whether a text is a resume and, once it is, labels
// the occupation. Classify may only be called after IsResume returned
// "yes" for the same run; a classifier instance covers one run and is
// not safe for concurrent use.
type Classifier interface {
	IsResume(ctx context.Context, text string) (string, error)
	Classify(ctx context.Context, text string) (string, error)
}

const (
	// JudgeNo is also the safe default when the model answer cannot be parsed.
	JudgeYes = "yes"
	JudgeNo  = "no"

	// UnknownOccupation is returned when classification cannot produce a label.
	UnknownOccupation = "未知职位"
)

const isResumeSystemPrompt = `你是一个简历内容判断助手。判断用户提供的文本是否是一份简历。
简历通常包含姓名、工作经历、教育背景、技能等要素中的若干项。
只返回JSON，格式为 {"judge": "yes"} 或 {"judge": "no"}，不要输出其他内容。`

const classifySystemPrompt = `你是一个专业的简历分类专家。根据用户提供的简历内容，判断求职者的职位类别。
例如：一份包含"精通Java、Spring Boot，负责后端服务开发"的简历是java工程师的简历；
一份包含"策划品牌推广活动，负责市场渠道拓展"的简历是市场营销的简历；
一份包含"熟悉PLC编程与电气原理图设计"的简历是电气工程师的简历。
只返回JSON，格式为 {"job": "<职位名称>"}，不要输出其他内容。`

type classifier struct {
	ai    adapter.AIServiceAdapter
	model string
	judge string
	log   *zerolog.Logger
}

func NewClassifier(ai adapter.AIServiceAdapter, model string, log *zerolog.Logger) *classifier {
	return &classifier{ai: ai, model: model, log: log}
}

func (c *classifier) IsResume(ctx context.Context, text string) (string, error) {
	raw, err := c.ai.Chat(ctx, c.model, []adapter.Message{
		{Role: "system", Content: isResumeSystemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", fmt.Errorf("classifier: is_resume call: %w", err)
	}
	c.judge = strings.ToLower(parseJSONField(raw, "judge", JudgeNo, c.log))
	if c.judge != JudgeYes {
		c.judge = JudgeNo
	}
	return c.judge, nil
}

func (c *classifier) Classify(ctx context.Context, text string) (string, error) {
	if c.judge != JudgeYes {
		return "", domain.ErrClassifierOrder
	}
	raw, err := c.ai.Chat(ctx, c.model, []adapter.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", fmt.Errorf("classifier: classify call: %w", err)
	}
	label := parseJSONField(raw, "job", UnknownOccupation, c.log)
	if strings.TrimSpace(label) == "" {
		label = UnknownOccupation
	}
	return label, nil
}

// parseJSONField extracts key from a model answer: strict JSON after
// stripping code fences, then a regex fallback, then fallback.
func parseJSONField(raw, key, fallback string, log *zerolog.Logger) string {
	cleaned := adapter.StripCodeFences(raw)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := adapter.ExtractJSONValue(cleaned, key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if log != nil {
		log.Warn().Str("key", key).Str("raw", clip(raw, 120)).Msg("unparseable classifier answer, using fallback")
	}
	return fallback
}

// clip bounds a log snippet to n runes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
