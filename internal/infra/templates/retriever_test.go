package templates

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
)

type fakeSource struct {
	docs []model.Document
	err  error
	last string
}

func (f *fakeSource) Search(ctx context.Context, query string) ([]model.Document, error) {
	f.last = query
	return f.docs, f.err
}

func retrLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestCosine(t *testing.T) {
	if got := cosine([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors = %v", got)
	}
	if got := cosine([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors = %v", got)
	}
	if got := cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("zero vector = %v", got)
	}
}

func TestStaticDocumentsCapsAtK(t *testing.T) {
	docs := []model.Document{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	s := NewStaticDocuments(docs)

	got, err := s.Retrieve(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "b" {
		t.Fatalf("got %+v", got)
	}

	got, _ = s.Retrieve(context.Background(), "q", 10)
	if len(got) != 3 {
		t.Fatalf("k beyond len must return all, got %d", len(got))
	}
}

func TestDefaultTemplatesCoverCoreOccupations(t *testing.T) {
	docs := DefaultTemplates()
	if len(docs) != 3 {
		t.Fatalf("have %d built-in templates", len(docs))
	}
	titles := make(map[string]bool, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			t.Fatalf("template %q has empty content", d.Title)
		}
		titles[d.Title] = true
	}
	for _, want := range []string{"软件工程师简历模板", "数据分析师简历模板", "产品经理简历模板"} {
		if !titles[want] {
			t.Fatalf("missing template %q", want)
		}
	}
}

// embeddingsStub answers /embeddings with vectors keyed on whether the
// input mentions software work, so ranking is deterministic.
func embeddingsStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode embeddings request: %v", err)
		}
		type item struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		out := struct {
			Data []item `json:"data"`
		}{}
		for i, text := range req.Input {
			vec := []float64{0, 1}
			if strings.Contains(text, "软件") || strings.Contains(text, "工程师") {
				vec = []float64{1, 0}
			}
			out.Data = append(out.Data, item{Index: i, Embedding: vec})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func TestSimilaritySearchRanksByQuery(t *testing.T) {
	srv := embeddingsStub(t)
	defer srv.Close()

	emb, err := NewEmbeddingsClient("test-key", srv.URL, "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	docs := []model.Document{
		{Title: "数据模板", Content: "数据分析报表"},
		{Title: "软件模板", Content: "软件开发经验"},
	}
	s := NewSimilaritySearch(emb, docs)

	got, err := s.Retrieve(context.Background(), "软件工程师", 1)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "软件模板" {
		t.Fatalf("top hit = %+v", got)
	}
}

func TestTemplateRetrieverFallsBackToBuiltins(t *testing.T) {
	src := &fakeSource{err: errors.New("search backend down")}
	r := NewTemplateRetriever(src, nil, retrLogger())

	got, err := r.Retrieve(context.Background(), "软件工程师", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d docs, want the capped built-ins", len(got))
	}
}

func TestTemplateRetrieverUsesSearchResults(t *testing.T) {
	src := &fakeSource{docs: []model.Document{{Title: "远端模板", Content: "正文"}}}
	r := NewTemplateRetriever(src, nil, retrLogger())

	got, err := r.Retrieve(context.Background(), "产品经理", 3)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "远端模板" {
		t.Fatalf("got %+v", got)
	}
	if src.last != "产品经理" {
		t.Fatalf("source saw query %q", src.last)
	}
}

func TestTemplateRetrieverSurvivesRankingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	emb, err := NewEmbeddingsClient("test-key", srv.URL, "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	src := &fakeSource{docs: []model.Document{{Title: "a", Content: "x"}, {Title: "b", Content: "y"}}}
	r := NewTemplateRetriever(src, emb, retrLogger())

	got, err := r.Retrieve(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("ranking failure must not fail retrieval: %v", err)
	}
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("got %+v", got)
	}
}

func TestUnavailableAlwaysErrors(t *testing.T) {
	if _, err := (Unavailable{}).Retrieve(context.Background(), "q", 3); err == nil {
		t.Fatal("want error")
	}
}
