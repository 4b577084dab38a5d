package engine

import "fmt"

// UnresolvedReferenceError marks an event whose token/pair identity is not
// yet known. The dispatcher buffers such events and retries them when the
// identity resolves; exhausting the retry budget escalates to a warning and
// the event is dropped.
type UnresolvedReferenceError struct {
	Kind     string // "pair" or "token"
	Identity string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference: %s", e.Kind, e.Identity)
}

// PersistenceError marks a durable-store call that failed after the bounded
// retry budget. Fatal for the event, never for the worker.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
