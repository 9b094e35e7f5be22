package usecase

import "context"

// Event names as they appear on the SSE wire.
const (
	EventStart              = "start"
	EventIsResume           = "is_resume"
	EventError              = "error"
	EventSuccess            = "success"
	EventClassifiedProgress = "classified_progress"
	EventClassified         = "classified"
	EventWorkflowStep       = "workflow_step"
	EventWorkflowDetail     = "workflow_detail"
	EventWorkflowInfo       = "workflow_info"
	EventProgress           = "progress"
	EventUpdate             = "update"
	EventModified           = "modified"
	EventFinal              = "final"
)

// Terminal statuses reported on the success event.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event is one server-sent message. Only the fields relevant to the
// event type are populated; the rest are omitted from the JSON.
type Event struct {
	Type           string `json:"type"`
	Result         string `json:"result,omitempty"`
	Label          string `json:"label,omitempty"`
	Message        string `json:"message,omitempty"`
	Text           string `json:"text,omitempty"`
	Status         string `json:"status,omitempty"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

// EventSink delivers events to the client. Implementations must be
// safe to call from a single goroutine; Send returning an error means
// the client is gone and the caller should stop producing.
type EventSink interface {
	Send(ctx context.Context, ev Event) error
}

func startEvent(sourceLang, targetLang string) Event {
	return Event{Type: EventStart, SourceLanguage: sourceLang, TargetLanguage: targetLang}
}

func isResumeEvent(judge string) Event {
	return Event{Type: EventIsResume, Result: judge}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

func successEvent(status string) Event {
	return Event{Type: EventSuccess, Status: status}
}

func textEvent(typ, text string) Event {
	return Event{Type: typ, Text: text}
}

func messageEvent(typ, message string) Event {
	return Event{Type: typ, Message: message}
}
