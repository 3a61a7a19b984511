// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the logger used by the package. Replace it, or call InitLogger, to redirect output.
var Log = logrus.New()

// InitLogger sends log output to w at the given level ("debug", "info", "warning", "error")
func InitLogger(w io.Writer, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetOutput(w)
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Returns a log entry carrying the operation name and remote path
func logOp(op string, path string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{"op": op, "path": path})
}

// Logs a failed operation at a level depending on its kind
func logFailure(entry *logrus.Entry, err error) {
	switch KindOf(err) {
	case KindTimeout:
		entry.WithError(err).Warning("operation timed out, remote outcome unknown")
	case KindConnection:
		entry.WithError(err).Error("connection failure")
	default:
		entry.WithError(err).Debug("operation failed")
	}
}
