package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"resume-rewrite-service/internal/domain/model"
)

func TestParseGrade(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		score string
		ok    bool
	}{
		{"strict json", `{"score": "yes"}`, "yes", true},
		{"strict json no", `{"score": "no"}`, "no", true},
		{"fenced json", "```json\n{\"score\": \"yes\"}\n```", "yes", true},
		{"single quotes via regex", `{'score': 'no'}`, "no", true},
		{"embedded in prose", `Sure! Here you go: {"score": "yes"} hope that helps`, "yes", true},
		{"mixed case normalized", `{"score": "Yes"}`, "yes", true},
		{"garbage", `the document looks fine to me`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := parseGrade(tc.raw)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if res.Score != tc.score {
				t.Fatalf("score = %q, want %q", res.Score, tc.score)
			}
		})
	}
}

func TestParseGradeKeepsFeedback(t *testing.T) {
	res, ok := parseGrade(`{"score": "no", "feedback": "missing skills section"}`)
	if !ok || res.Score != "no" || res.Feedback != "missing skills section" {
		t.Fatalf("got %+v ok=%v", res, ok)
	}
}

func TestBinaryGradeDefaultsToYes(t *testing.T) {
	doc := model.Document{Content: "模板内容"}

	// transport failure
	g := NewGraderSet(&fakeAI{err: errors.New("down")}, "m", testLogger())
	if !g.GradeRelevance(context.Background(), doc, "软件工程师") {
		t.Fatal("transport failure must default to keep")
	}

	// unparseable answer
	g = NewGraderSet(&fakeAI{replies: []string{"I cannot comply"}}, "m", testLogger())
	if !g.GradeRelevance(context.Background(), doc, "软件工程师") {
		t.Fatal("unparseable grade must default to keep")
	}

	// an explicit no still filters
	g = NewGraderSet(&fakeAI{replies: []string{`{"score": "no"}`}}, "m", testLogger())
	if g.GradeRelevance(context.Background(), doc, "软件工程师") {
		t.Fatal("explicit no must filter the document")
	}
}

func TestEvaluateFallsBackToAccept(t *testing.T) {
	g := NewGraderSet(&fakeAI{replies: []string{"not json at all"}}, "m", testLogger())
	res := g.Evaluate(context.Background(), "generation", "question", nil)
	if res.Score != "yes" {
		t.Fatalf("score = %q, want accept fallback", res.Score)
	}
}

func TestRewriteQuestion(t *testing.T) {
	g := NewGraderSet(&fakeAI{replies: []string{"  软件工程师 简历 模板 技能  "}}, "m", testLogger())
	out, err := g.RewriteQuestion(context.Background(), "软件工程师")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if out != "软件工程师 简历 模板 技能" {
		t.Fatalf("out = %q", out)
	}

	g = NewGraderSet(&fakeAI{replies: []string{"   "}}, "m", testLogger())
	if _, err := g.RewriteQuestion(context.Background(), "软件工程师"); err == nil {
		t.Fatal("empty rewrite must error so the caller keeps the original")
	}
}

func TestTruncateKeepsUTF8Intact(t *testing.T) {
	long := strings.Repeat("简历优化", 40)
	got := truncate(long, 60)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated snippet is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 63 { // 60 runes plus the ellipsis
		t.Fatalf("rune count = %d", utf8.RuneCountInString(got))
	}
	if got := truncate("短", 60); got != "短" {
		t.Fatalf("short input mangled: %q", got)
	}
}
