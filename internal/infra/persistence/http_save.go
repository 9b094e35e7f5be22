// File: internal/infra/persistence/http_save.go
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ResultStore = (*HTTPResultStore)(nil)

// HTTPResultStore posts completed results to the save backend as one
// JSON document. The backend answers 200 even for handled failures, so
// only transport and non-2xx responses surface as errors.
type HTTPResultStore struct {
	url    string
	client *http.Client
}

func NewHTTPResultStore(url string, timeout time.Duration) *HTTPResultStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPResultStore{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPResultStore) Save(ctx context.Context, res *model.RewriteResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("save backend http %d", resp.StatusCode)
	}
	return nil
}
