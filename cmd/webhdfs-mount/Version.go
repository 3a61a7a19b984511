// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package main

import "fmt"

var (
	// VERSION of the release, set by the build
	VERSION = "dev"

	// GITCommit overwritten automatically by the build
	GITCOMMIT = "HEAD"

	// Built time overwritten automatically by the build
	BUILDTIME = "NOW"

	// Built hostname overwritten automatically by build
	HOSTNAME = "LOCALHOST"
)

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s on %s)", VERSION, GITCOMMIT, BUILDTIME, HOSTNAME)
}
