package model

// Document is one reference resume template produced by a template source
// or retriever. Immutable once created; scoped to a single workflow run.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
