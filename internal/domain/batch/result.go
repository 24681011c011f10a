package batch

// Action is a bulk operation kind.
type Action string

// Bulk actions.
const (
	ActionIndex  Action = "index"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

// IsValid reports whether a is a known bulk action.
func (a Action) IsValid() bool {
	switch a {
	case ActionIndex, ActionCreate, ActionDelete:
		return true
	}
	return false
}

// Outcome is what a successful item did to its document.
type Outcome string

// Outcomes of a successful item.
const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeDeleted Outcome = "deleted"
)

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Target addresses the document a bulk item acts on.
type Target struct {
	Index string
	Type  string
	ID    string
}

// Result is the outcome of processing one item in a bulk request.
type Result struct {
	action  Action
	target  Target
	status  ItemStatus
	outcome Outcome
	err     error
}

// NewOK creates a successful batch result.
func NewOK(action Action, target Target, outcome Outcome) Result {
	return Result{action: action, target: target, status: StatusOK, outcome: outcome}
}

// NewError creates a failed batch result.
func NewError(action Action, target Target, err error) Result {
	return Result{action: action, target: target, status: StatusError, err: err}
}

// Action returns the bulk action of the item.
func (r Result) Action() Action { return r.action }

// Target returns the addressed document.
func (r Result) Target() Target { return r.target }

// ID returns the document identifier.
func (r Result) ID() string { return r.target.ID }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Outcome returns what happened to the document; empty on error.
func (r Result) Outcome() Outcome { return r.outcome }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// HasErrors reports whether any result failed.
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.status == StatusError {
			return true
		}
	}
	return false
}
