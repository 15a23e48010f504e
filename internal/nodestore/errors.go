package nodestore

import (
	"errors"
	"fmt"
)

// ErrUnknownRelType is returned for relationship types outside the vocabulary.
var ErrUnknownRelType = errors.New("unknown relationship type")

// LookupError reports an object that was never registered with the session.
// It always indicates a programming error in the caller.
type LookupError struct {
	Object any
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no node id for object %T(%v)", e.Object, e.Object)
}

// StoreWriteError reports that the backing store rejected a write.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
