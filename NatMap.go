// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"net/url"
)

// NatMap translates cluster-internal "host:port" addresses (as the NameNode hands them out
// in redirects) into addresses reachable from the client. The zero value is the identity map.
type NatMap map[string]string

// Translate returns the reachable address for addr, or addr itself if it is not mapped
func (this NatMap) Translate(addr string) string {
	if mapped, ok := this[addr]; ok {
		return mapped
	}
	return addr
}

// TranslateURL returns a copy of u with its host rewritten through the map
func (this NatMap) TranslateURL(u *url.URL) *url.URL {
	translated := *u
	translated.Host = this.Translate(u.Host)
	return &translated
}
