package editor

import (
	"context"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/mutate"
)

// ChangeType is the kind of a canvas change event.
type ChangeType string

const (
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions"
	ChangePosition   ChangeType = "position"
	ChangeRemove     ChangeType = "remove"
	ChangeHidden     ChangeType = "hidden"
)

// Dimensions is a measured node size.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Change is one event from the canvas. Edge selects the edge with ID instead
// of the node; only select and remove apply to edges.
type Change struct {
	Type       ChangeType      `json:"type"`
	ID         string          `json:"id"`
	Edge       bool            `json:"edge,omitempty"`
	Selected   bool            `json:"selected,omitempty"`
	Dimensions *Dimensions     `json:"dimensions,omitempty"`
	Position   *graph.Position `json:"position,omitempty"`
	Dragging   bool            `json:"dragging,omitempty"`
	Hidden     bool            `json:"hidden,omitempty"`
}

// transient reports whether c only affects the view: selection, measuring
// and drag previews.
func (c Change) transient() bool {
	switch c.Type {
	case ChangeSelect, ChangeDimensions:
		return true
	case ChangePosition:
		return c.Dragging
	}
	return false
}

func (c Change) validate() error {
	switch c.Type {
	case ChangeSelect, ChangeRemove:
	case ChangeDimensions:
		if c.Edge || c.Dimensions == nil {
			return errors.New(errors.ErrCodeInvalidInput, "dimensions change for %q needs node dimensions", c.ID)
		}
	case ChangePosition:
		if c.Edge || c.Position == nil {
			return errors.New(errors.ErrCodeInvalidInput, "position change for %q needs a node position", c.ID)
		}
	case ChangeHidden:
		if c.Edge {
			return errors.New(errors.ErrCodeInvalidInput, "hidden change for %q must target a node", c.ID)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown change type %q", c.Type)
	}
	return nil
}

func (c Change) apply(s graph.State) (graph.State, bool) {
	switch c.Type {
	case ChangeSelect:
		if c.Edge {
			return mutate.SelectEdge(s, c.ID, c.Selected)
		}
		return mutate.SelectNode(s, c.ID, c.Selected)
	case ChangeDimensions:
		return mutate.SetMeasuredSize(s, c.ID, c.Dimensions.Width, c.Dimensions.Height)
	case ChangePosition:
		return mutate.MoveNode(s, c.ID, *c.Position)
	case ChangeRemove:
		if c.Edge {
			return mutate.DeleteEdge(s, c.ID)
		}
		return mutate.DeleteNode(s, c.ID)
	case ChangeHidden:
		return mutate.SetNodeHidden(s, c.ID, c.Hidden)
	}
	return s, false
}

// ApplyChanges applies a batch of canvas change events in order.
//
// A batch made only of selections, measurements and in-progress drags
// updates the document without touching history or the dirty flag. Any
// other batch that changes something records exactly one history entry.
// Viewers may send everything except removals and visibility changes.
func (s *Session) ApplyChanges(ctx context.Context, changes []Change) error {
	transient := true
	for _, c := range changes {
		if err := c.validate(); err != nil {
			return err
		}
		if !c.transient() {
			transient = false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	viewerAllowed := true
	for _, c := range changes {
		if c.Type == ChangeRemove || c.Type == ChangeHidden {
			viewerAllowed = false
		}
	}
	if err := s.gate(viewerAllowed); err != nil {
		return err
	}

	st := s.doc.State()
	changed := false
	for _, c := range changes {
		var ok bool
		if st, ok = c.apply(st); ok {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if transient {
		s.doc.SetState(st)
		return nil
	}
	s.commitLocked(ctx, "changes", st)
	return nil
}
