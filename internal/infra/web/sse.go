// File: internal/infra/web/sse.go
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/infra/metrics"
	"resume-rewrite-service/internal/usecase"
)

// Compile-time check
var _ usecase.EventSink = (*sseWriter)(nil)

// sseWriter streams events as `data: {json}\n\n`, flushing after each
// one. It enforces the terminal contract: after a success event nothing
// else goes out, and after an error only the closing success may follow.
type sseWriter struct {
	w       http.ResponseWriter
	flush   http.Flusher
	errored bool
	closed  bool
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flush, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &sseWriter{w: w, flush: flush}, nil
}

func (s *sseWriter) Send(ctx context.Context, ev usecase.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return domain.ErrStreamTerminated
	}
	if s.errored && ev.Type != usecase.EventSuccess {
		return domain.ErrStreamTerminated
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flush.Flush()
	metrics.IncSSEEvent(ev.Type)

	switch ev.Type {
	case usecase.EventSuccess:
		s.closed = true
	case usecase.EventError:
		s.errored = true
	}
	return nil
}
