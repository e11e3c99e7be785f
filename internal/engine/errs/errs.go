// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the stable classification of a failure, surfaced to clients as
// the response status tag.
type Kind string

const (
	Conflict       Kind = "CONFLICT"
	NotFound       Kind = "NOT_FOUND"
	AccessDenied   Kind = "ACCESS_DENIED"
	RateLimited    Kind = "RATE_LIMITED"
	UpstreamFailed Kind = "UPSTREAM_FAILURE"
	LoginError     Kind = "LOGIN_ERROR"
	InvalidParam   Kind = "PARAMETER_ERROR"
	Internal       Kind = "FAILED"
)

// Error carries a Kind and a client-safe message
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New returns a Kind error annotated with the caller's stack
func New(kind Kind, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Wrap classifies cause under kind. The message is what clients see; the
// cause is kept for logs and debug tracebacks.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: cause})
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, Internal when unclassified
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-safe message of err
func Message(err error) string {
	if e, ok := As(err); ok {
		return e.Msg
	}
	return "internal error"
}
