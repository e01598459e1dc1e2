// Package common defines the sentinel errors shared across service layers.
// Callers match them with errors.Is; handlers map them to HTTP status
// classes.
package common

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrGone         = errors.New("share link expired")
	ErrUnauthorized = errors.New("unauthorized")
)

// OpError reports a multi-step orchestration failure: which operation broke
// and at which stage. The underlying cause stays reachable via Unwrap.
type OpError struct {
	Op    string // "upload", "download", "delete", "share"
	Stage string
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.Op, e.Stage, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
