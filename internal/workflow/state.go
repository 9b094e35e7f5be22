package workflow

import "resume-rewrite-service/internal/domain/model"

// State is the record threaded through every graph node.
// Input mutates on regeneration, Resume is stable, Documents are replaced on
// each retrieval/grading pass, Generation on each generation pass.
type State struct {
	Input      string
	Resume     string
	Documents  []model.Document
	Generation string
	Output     string
	Rewrites   int
}

// Delta carries only the fields a node changed. Nil fields persist unchanged:
// applying a delta is a merge, never a full replacement.
type Delta struct {
	Input      *string
	Documents  *[]model.Document
	Generation *string
	Output     *string
	Rewrites   *int
}

func (s *State) apply(d Delta) {
	if d.Input != nil {
		s.Input = *d.Input
	}
	if d.Documents != nil {
		s.Documents = *d.Documents
	}
	if d.Generation != nil {
		s.Generation = *d.Generation
	}
	if d.Output != nil {
		s.Output = *d.Output
	}
	if d.Rewrites != nil {
		s.Rewrites = *d.Rewrites
	}
}

func strPtr(s string) *string                      { return &s }
func docsPtr(d []model.Document) *[]model.Document { return &d }
func intPtr(i int) *int                            { return &i }
