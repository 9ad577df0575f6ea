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
// Package parser turns the bytes buffered from a connection into a Request.
//
// The header section is only parsed once its terminator (an empty CRLF line) has been
// buffered; until then Parse reports ErrNeedMore and the caller reads more bytes.
// The body is not read here: ContentLength tells the caller how many bytes follow
// the header section.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rulego/httpd/api/types"
)

const (
	// CRLF 行结束符
	CRLF = "\r\n"
	// HeaderTerminator marks the end of the header section.
	HeaderTerminator = "\r\n\r\n"
	// ContentLengthHeader is matched case-sensitively, like every other header name.
	ContentLengthHeader = "Content-Length"
	// httpPrefix 协议版本前缀
	httpPrefix = "HTTP/"
)

var (
	// ErrNeedMore means the header terminator has not been buffered yet.
	ErrNeedMore = errors.New("need more bytes")
	// ErrMalformedRequest means the start line or the Content-Length is invalid.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrHeaderTooLarge means the header section exceeds the configured limit.
	ErrHeaderTooLarge = errors.New("request header too large")
)

var terminator = []byte(HeaderTerminator)

// FindHeaderEnd returns the offset just past the header terminator in buf, or -1.
// The search starts at from, which lets callers resume where a previous scan stopped.
func FindHeaderEnd(buf []byte, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(buf) {
		return -1
	}
	i := bytes.Index(buf[from:], terminator)
	if i < 0 {
		return -1
	}
	return from + i + len(terminator)
}

// HeaderParser parses the header section of one request out of an incrementally filled
// buffer. A HeaderParser belongs to one connection; call Reset before reusing it for
// the next request.
type HeaderParser struct {
	// MaxHeaderBytes bounds the header section. 0 means unlimited.
	MaxHeaderBytes int
	// scanned is how far the buffer has been searched for the terminator.
	scanned int
}

// NewHeaderParser creates a parser with the given header size limit.
func NewHeaderParser(maxHeaderBytes int) *HeaderParser {
	return &HeaderParser{MaxHeaderBytes: maxHeaderBytes}
}

// Reset forgets the scan position.
func (p *HeaderParser) Reset() {
	p.scanned = 0
}

// Parse parses the header section at the start of buf. It returns the request and the
// number of bytes consumed (terminator included). Bytes after that offset belong to the
// body or to a following request and are left untouched.
//
// ErrNeedMore is returned while the terminator is missing, ErrHeaderTooLarge when the
// limit is exceeded first and an error wrapping ErrMalformedRequest for a bad start line.
func (p *HeaderParser) Parse(buf []byte) (*types.Request, int, error) {
	// the terminator may straddle the previous scan boundary
	from := p.scanned - (len(terminator) - 1)
	end := FindHeaderEnd(buf, from)
	if end < 0 {
		p.scanned = len(buf)
		if p.MaxHeaderBytes > 0 && len(buf) > p.MaxHeaderBytes {
			return nil, 0, ErrHeaderTooLarge
		}
		return nil, 0, ErrNeedMore
	}
	if p.MaxHeaderBytes > 0 && end > p.MaxHeaderBytes {
		return nil, 0, ErrHeaderTooLarge
	}
	p.scanned = 0
	req, err := ParseHeader(buf[:end])
	if err != nil {
		return nil, end, err
	}
	return req, end, nil
}

// ParseHeader parses a complete header section.
//
// The first line must be "METHOD SP PATH SP HTTP/VERSION" with non-empty parts.
// Following lines are "NAME: VALUE" (one optional space after the colon). The first line
// that is not a header field ends header parsing; any lines after it are skipped.
// Header names keep their case and the last duplicate wins.
func ParseHeader(head []byte) (*types.Request, error) {
	lines := strings.Split(string(head), CRLF)
	method, path, version, ok := parseRequestLine(lines[0])
	if !ok {
		return nil, fmt.Errorf("%w: bad request line %q", ErrMalformedRequest, lines[0])
	}
	req := &types.Request{
		Method:    method,
		Path:      path,
		Version:   version,
		Headers:   make(map[string]string),
		RawHeader: append([]byte(nil), head...),
	}
	for _, line := range lines[1:] {
		name, value, ok := parseHeaderLine(line)
		if !ok {
			break
		}
		req.Headers[name] = value
	}
	return req, nil
}

// parseRequestLine 解析请求行，例如：GET /index.html HTTP/1.1
func parseRequestLine(line string) (method, path, version string, ok bool) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", false
	}
	if !strings.HasPrefix(parts[2], httpPrefix) {
		return "", "", "", false
	}
	method, path, version = parts[0], parts[1], parts[2][len(httpPrefix):]
	if method == "" || path == "" || version == "" {
		return "", "", "", false
	}
	return method, path, version, true
}

// parseHeaderLine 解析请求头，例如：Host: example.com
func parseHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	name, value = line[:i], line[i+1:]
	value = strings.TrimPrefix(value, " ")
	return name, value, true
}

// ContentLength returns the declared body length of req.
// present is false when no Content-Length header was sent. A value that is not a
// non-negative integer is a malformed request.
func ContentLength(req *types.Request) (length int64, present bool, err error) {
	v, ok := req.Header(ContentLengthHeader)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, true, fmt.Errorf("%w: bad Content-Length %q", ErrMalformedRequest, v)
	}
	return n, true, nil
}
