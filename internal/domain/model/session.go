package model

import "time"

// Session holds the parameters of one resume-modification request between
// the initialize call and the modify stream that consumes it.
type Session struct {
	ID             string    `json:"id"`
	ResumeText     string    `json:"resume_text"`
	Requirements   string    `json:"requirements,omitempty"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	ClientAddr     string    `json:"client_addr"`
	LastTouched    time.Time `json:"last_touched"`
}

// NewSession builds a session stamped with now.
func NewSession(id, resumeText, requirements, sourceLang, targetLang, clientAddr string) *Session {
	return &Session{
		ID:             id,
		ResumeText:     resumeText,
		Requirements:   requirements,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		ClientAddr:     clientAddr,
		LastTouched:    time.Now(),
	}
}

// Touch refreshes the idle timer.
func (s *Session) Touch(now time.Time) { s.LastTouched = now }

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastTouched) > ttl
}
