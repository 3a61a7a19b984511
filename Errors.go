// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// Kind classifies failures surfaced by the harness, the file streams and the transports.
// Kinds are strings so they read well in logs.
type Kind string

const (
	// KindTimeout: the deadline expired while driving an operation. This is a local
	// verdict; the remote side effect may still have happened.
	KindTimeout Kind = "TIMEOUT"

	// KindInvalidInput: buffer length not representable as int64, seek overflow or seek before start.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindNotFound: remote path does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindPermissionDenied: remote rejected the operation for the current user.
	KindPermissionDenied Kind = "PERMISSION_DENIED"

	// KindAlreadyExists: create without overwrite on an existing path.
	KindAlreadyExists Kind = "ALREADY_EXISTS"

	// KindRemote: any other failure reported by the cluster, including malformed responses.
	KindRemote Kind = "REMOTE_ERROR"

	// KindConnection: the request never got a response (dial, reset, broken body).
	KindConnection Kind = "CONNECTION_ERROR"
)

// Error is the error type returned by every operation of this package
type Error struct {
	Kind Kind   // failure category
	Op   string // operation, e.g. "stat", "read", "seek"
	Path string // remote path, may be empty
	Msg  string // human readable detail
	Err  error  // underlying cause, may be nil
}

var _ error = (*Error)(nil) // ensure *Error implements error

func (this *Error) Error() string {
	s := string(this.Kind)
	if this.Op != "" {
		s = this.Op + ": " + s
	}
	if this.Path != "" {
		s += " [" + this.Path + "]"
	}
	if this.Msg != "" {
		s += ": " + this.Msg
	}
	if this.Err != nil {
		s += ": " + this.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause
func (this *Error) Unwrap() error {
	return this.Err
}

// Is maps error kinds onto the standard I/O failure categories, so generic stream
// consumers can use errors.Is(err, fs.ErrNotExist) and friends.
func (this *Error) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return this.Kind == KindNotFound
	case fs.ErrPermission:
		return this.Kind == KindPermissionDenied
	case fs.ErrExist:
		return this.Kind == KindAlreadyExists
	case fs.ErrInvalid:
		return this.Kind == KindInvalidInput
	case os.ErrDeadlineExceeded:
		return this.Kind == KindTimeout
	}
	if e, ok := target.(*Error); ok {
		return e.Kind == this.Kind && (e.Op == "" || e.Op == this.Op)
	}
	return false
}

// Timeout reports whether the error is a deadline expiry (net.Error style)
func (this *Error) Timeout() bool {
	return this.Kind == KindTimeout
}

func newError(kind Kind, op string, path string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// wrapError attaches kind/op/path to a cause. Errors already classified keep their kind.
func wrapError(kind Kind, op string, path string, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return &Error{Kind: kind, Op: op, Path: path, Msg: msg, Err: cause}
}

// KindOf returns the Kind of err, or "" if err was not produced by this package
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout returns true if err is a harness deadline expiry
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsSuccessOrBenignError returns true for nil and for errors which are part of normal
// operation (EOF, not found) and therefore must not be retried
func IsSuccessOrBenignError(err error) bool {
	if err == nil || err == io.EOF {
		return true
	}
	switch KindOf(err) {
	case KindNotFound, KindAlreadyExists, KindPermissionDenied, KindInvalidInput:
		return true
	}
	return false
}
