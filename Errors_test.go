// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMapsToStandardCategories(t *testing.T) {
	assert.True(t, errors.Is(newError(KindNotFound, "stat", "/x", ""), fs.ErrNotExist))
	assert.True(t, errors.Is(newError(KindPermissionDenied, "dir", "/x", ""), fs.ErrPermission))
	assert.True(t, errors.Is(newError(KindAlreadyExists, "create", "/x", ""), fs.ErrExist))
	assert.True(t, errors.Is(newError(KindInvalidInput, "seek", "/x", ""), fs.ErrInvalid))
	assert.True(t, errors.Is(newError(KindTimeout, "read", "/x", ""), os.ErrDeadlineExceeded))
	assert.False(t, errors.Is(newError(KindRemote, "read", "/x", ""), fs.ErrNotExist))
}

func TestErrorMatchesByKindAndOp(t *testing.T) {
	err := newError(KindTimeout, "read", "/x", "slow")
	assert.True(t, errors.Is(err, &Error{Kind: KindTimeout}))
	assert.True(t, errors.Is(err, &Error{Kind: KindTimeout, Op: "read"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindTimeout, Op: "stat"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindRemote}))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := &Error{Kind: KindConnection, Op: "stat", Path: "/a", Msg: "request failed", Err: cause}
	assert.Equal(t, "stat: CONNECTION_ERROR [/a]: request failed: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, "TIMEOUT", (&Error{Kind: KindTimeout}).Error())
}

func TestWrapErrorKeepsClassification(t *testing.T) {
	assert.Nil(t, wrapError(KindRemote, "stat", "/a", nil, "x"))
	inner := newError(KindNotFound, "stat", "/a", "gone")
	assert.Same(t, inner, wrapError(KindRemote, "dir", "/b", inner, "x"))
	wrapped := wrapError(KindConnection, "dir", "/b", io.ErrUnexpectedEOF, "truncated")
	assert.Equal(t, KindConnection, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
}

func TestIsSuccessOrBenignError(t *testing.T) {
	assert.True(t, IsSuccessOrBenignError(nil))
	assert.True(t, IsSuccessOrBenignError(io.EOF))
	assert.True(t, IsSuccessOrBenignError(newError(KindNotFound, "", "", "")))
	assert.True(t, IsSuccessOrBenignError(newError(KindPermissionDenied, "", "", "")))
	assert.False(t, IsSuccessOrBenignError(newError(KindTimeout, "", "", "")))
	assert.False(t, IsSuccessOrBenignError(newError(KindConnection, "", "", "")))
	assert.False(t, IsSuccessOrBenignError(errors.New("Injected failure")))
}
