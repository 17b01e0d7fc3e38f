// Copyright 2025 The Yourssu Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the closed set of error kinds the deployment core
// surfaces to its callers. The boundary layer maps kinds to transport codes;
// nothing in here carries HTTP concerns, stack traces or credentials.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	NotFound         Kind = "NotFound"
	Conflict         Kind = "Conflict"
	PermissionDenied Kind = "PermissionDenied"
	InvalidState     Kind = "InvalidState"
	ValidationError  Kind = "ValidationError"
	Timeout          Kind = "Timeout"
	Unexpected       Kind = "Unexpected"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or Unexpected when err carries none.
func KindOf(err error) Kind {
	e := &Error{}
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// std aliases so callers need not import both packages.
var (
	Is = stderrors.Is
	As = stderrors.As
)
