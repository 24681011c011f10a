package batch

import (
	"errors"
	"testing"
)

var target = Target{Index: "articles", Type: "article", ID: "doc-1"}

func TestNewOK(t *testing.T) {
	r := NewOK(ActionIndex, target, OutcomeCreated)
	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Target() != target {
		t.Errorf("Target() = %+v", r.Target())
	}
	if r.Action() != ActionIndex {
		t.Errorf("Action() = %q", r.Action())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Outcome() != OutcomeCreated {
		t.Errorf("Outcome() = %q", r.Outcome())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError(ActionDelete, target, err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if r.Outcome() != "" {
		t.Errorf("Outcome() = %q, want empty", r.Outcome())
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestAction_IsValid(t *testing.T) {
	for _, a := range []Action{ActionIndex, ActionCreate, ActionDelete} {
		if !a.IsValid() {
			t.Errorf("%q invalid", a)
		}
	}
	for _, a := range []Action{"update", "", "INDEX"} {
		if a.IsValid() {
			t.Errorf("%q valid", a)
		}
	}
}

func TestHasErrors(t *testing.T) {
	ok := NewOK(ActionCreate, target, OutcomeCreated)
	if HasErrors([]Result{ok, ok}) {
		t.Error("HasErrors = true for all-ok results")
	}
	if !HasErrors([]Result{ok, NewError(ActionIndex, target, errors.New("x"))}) {
		t.Error("HasErrors = false with a failure")
	}
	if HasErrors(nil) {
		t.Error("HasErrors(nil) = true")
	}
}
