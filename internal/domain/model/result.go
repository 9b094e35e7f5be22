package model

import "time"

// RewriteResult is the persisted outcome of one completed modify run.
// Field names mirror the save backend's JSON contract.
type RewriteResult struct {
	OriginalContent         string    `json:"originalContent"`
	ModifiedContent         string    `json:"modifiedContent"`
	ModificationDescription string    `json:"modificationDescription,omitempty"`
	UserID                  string    `json:"userId"`
	Status                  int       `json:"status"`
	ResumeClassification    string    `json:"resumeClassification,omitempty"`
	ModifiedClassification  string    `json:"modifiedResumeClassification,omitempty"`
	CreatedAt               time.Time `json:"-"`
}
