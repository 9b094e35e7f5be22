package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/retrieval"
)

// Compile-time check
var _ retrieval.TemplateSource = (*HTTPTemplateSource)(nil)

// HTTPTemplateSource queries a template-search backend:
// GET {base}?q=<keyword 简历模板> returning [{"title": ..., "content": ...}].
type HTTPTemplateSource struct {
	base   string
	client *http.Client
}

func NewHTTPTemplateSource(base string, timeout time.Duration) *HTTPTemplateSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTemplateSource{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPTemplateSource) Search(ctx context.Context, keyword string) ([]model.Document, error) {
	q := url.Values{}
	q.Set("q", keyword+" 简历模板")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"?"+q.Encode(), nil)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("template search http %d", resp.StatusCode)
	}

	var payload []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		out = append(out, model.Document{Title: p.Title, Content: p.Content})
	}
	return out, nil
}
