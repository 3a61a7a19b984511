// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"syscall"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
)

var (
	eRofs    = fuse.Errno(syscall.EROFS)
	eAccess  = fuse.Errno(syscall.EACCES)
	eInval   = fuse.Errno(syscall.EINVAL)
	eTimeout = fuse.Errno(syscall.ETIMEDOUT)
	eNotsup  = fuse.Errno(syscall.ENOTSUP)
	eBadf    = fuse.Errno(syscall.EBADF)
)

// Translates harness errors into errno values understood by the kernel
func errno(err error) error {
	if err == nil {
		return nil
	}
	switch webhdfs.KindOf(err) {
	case webhdfs.KindNotFound:
		return fuse.ENOENT
	case webhdfs.KindPermissionDenied:
		return eAccess
	case webhdfs.KindAlreadyExists:
		return fuse.EEXIST
	case webhdfs.KindInvalidInput:
		return eInval
	case webhdfs.KindTimeout:
		return eTimeout
	default:
		return fuse.EIO
	}
}
