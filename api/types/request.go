/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"strconv"
	"strings"
)

// KeepAliveThreshold is the protocol version above which a connection is reused
// after a successful response. 1.1 and later are kept alive, 1.0 is closed.
const KeepAliveThreshold = 1.05

// Request is a parsed HTTP/1.x request. It is created fresh for every read cycle of a
// connection and is owned by the pipeline processing it.
type Request struct {
	// Method 请求方法，例如GET
	Method string
	// Path 请求路径，未解码，可能包含查询参数
	Path string
	// Version 协议版本，例如1.1
	Version string
	// Headers holds header fields. Names are case-sensitive and the last duplicate wins.
	Headers map[string]string
	// Body is nil when no Content-Length was declared. A declared length of 0
	// yields an empty, non-nil slice.
	Body []byte
	// RawHeader is the header section as received, terminator included.
	RawHeader []byte
	// RemoteAddr 客户端地址
	RemoteAddr string
	// Params holds the capture groups of the matching route, in order.
	Params []string
	// NamedParams holds named regexp groups or template parameters of the matching route.
	NamedParams map[string]string
}

// Header returns the value of the header with the exact given name.
func (r *Request) Header(name string) (string, bool) {
	if r.Headers == nil {
		return "", false
	}
	v, ok := r.Headers[name]
	return v, ok
}

// HasBody reports whether a Content-Length was declared.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// PathOnly returns the path without its query component.
func (r *Request) PathOnly() string {
	if i := strings.IndexByte(r.Path, '?'); i >= 0 {
		return r.Path[:i]
	}
	return r.Path
}

// Query returns the raw query component of the path, without the leading '?'.
func (r *Request) Query() string {
	if i := strings.IndexByte(r.Path, '?'); i >= 0 {
		return r.Path[i+1:]
	}
	return ""
}

// KeepAlive reports whether the connection may be reused after the response.
// The version is compared numerically, so "1.1" and "2" keep the connection
// while "1.0" or an unparsable version close it.
func (r *Request) KeepAlive() bool {
	v, err := strconv.ParseFloat(r.Version, 64)
	if err != nil {
		return false
	}
	return v > KeepAliveThreshold
}
