package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/usecase"
)

type fakeSessions struct {
	sess *model.Session
}

func (f *fakeSessions) Create(ctx context.Context, resumeText, requirements, sourceLang, targetLang, clientAddr string) (*model.Session, error) {
	f.sess = model.NewSession("sess-123", resumeText, requirements, sourceLang, targetLang, clientAddr)
	return f.sess, nil
}

func (f *fakeSessions) GetAndTouch(ctx context.Context, id string) (*model.Session, error) {
	if f.sess == nil || f.sess.ID != id {
		return nil, domain.ErrSessionNotFound
	}
	return f.sess, nil
}

func (f *fakeSessions) DeleteExpired(ctx context.Context, now time.Time) (int, error) { return 0, nil }

func (f *fakeSessions) Len(ctx context.Context) (int, error) { return 0, nil }

// fakeModify resolves through the session store and emits a fixed
// success stream.
type fakeModify struct {
	sessions *fakeSessions
	events   []usecase.Event
}

func (f *fakeModify) Resolve(ctx context.Context, sessionID string) (*model.Session, error) {
	return f.sessions.GetAndTouch(ctx, sessionID)
}

func (f *fakeModify) Run(ctx context.Context, sess *model.Session, sink usecase.EventSink) error {
	for _, ev := range f.events {
		if err := sink.Send(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeSessions) {
	t.Helper()
	sessions := &fakeSessions{}
	modify := &fakeModify{sessions: sessions, events: []usecase.Event{
		{Type: usecase.EventStart, SourceLanguage: "zh", TargetLanguage: "zh"},
		{Type: usecase.EventIsResume, Result: "yes"},
		{Type: usecase.EventUpdate, Text: "优化"},
		{Type: usecase.EventFinal, Text: "优化后"},
		{Type: usecase.EventSuccess, Status: usecase.StatusCompleted},
	}}
	log := zerolog.Nop()
	return NewServer(sessions, modify, nil, testServerConfig(), &log), sessions
}

func TestInitializeCreatesSession(t *testing.T) {
	srv, sessions := newTestServer(t)

	body := `{"resume_text": "张三的简历", "requirements": "突出后端经验", "source_language": "zh"}`
	req := httptest.NewRequest(http.MethodPost, "/api/initialize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["session_id"] != "sess-123" {
		t.Fatalf("session_id = %q", resp["session_id"])
	}
	if sessions.sess.TargetLanguage != "zh" {
		t.Fatalf("target language must default to source, got %q", sessions.sess.TargetLanguage)
	}
}

func TestInitializeRejectsMissingResume(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/initialize", strings.NewReader(`{"resume_text": "   "}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "缺少简历内容") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestInitializeRejectsBadJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/initialize", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestModifyUnknownSessionIs404NotStream(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/modify?session_id=bogus", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); strings.Contains(ct, "text/event-stream") {
		t.Fatalf("must answer JSON before opening a stream, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "会话不存在或已过期") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestModifyMissingSessionID(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/modify", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestModifyStreamsEvents(t *testing.T) {
	srv, sessions := newTestServer(t)
	_, _ = sessions.Create(context.Background(), "简历", "", "zh", "zh", "test")

	req := httptest.NewRequest(http.MethodGet, "/api/modify?session_id=sess-123", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	var types []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev usecase.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event line %q: %v", line, err)
		}
		types = append(types, ev.Type)
	}
	want := []string{usecase.EventStart, usecase.EventIsResume, usecase.EventUpdate, usecase.EventFinal, usecase.EventSuccess}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestLanguageCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/language", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var langs map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if langs["zh"] != "中文" || langs["en"] != "英文" {
		t.Fatalf("catalog = %v", langs)
	}
	if len(langs) != 27 {
		t.Fatalf("catalog has %d languages", len(langs))
	}
}

func TestHealthHidesSecrets(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "key") || strings.Contains(body, "secret") {
		t.Fatalf("health must not expose configuration: %s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/initialize", nil)
	req.Header.Set("Origin", "https://resume.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://resume.example.com" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSBlocksUnlistedOrigin(t *testing.T) {
	sessions := &fakeSessions{}
	log := zerolog.Nop()
	cfg := testServerConfig()
	cfg.AllowOrigins = []string{"https://allowed.example.com"}
	srv := NewServer(sessions, &fakeModify{sessions: sessions}, nil, cfg, &log)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be echoed")
	}
}

func TestClientAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4567"
	if got := clientAddr(req); got != "192.0.2.10" {
		t.Fatalf("clientAddr = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientAddr(req); got != "198.51.100.7" {
		t.Fatalf("clientAddr with forward = %q", got)
	}
}
