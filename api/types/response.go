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
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/net/http/httpguts"
)

const (
	// ContentType 内容类型头
	ContentType = "Content-Type"
	// ContentLength 内容长度头
	ContentLength = "Content-Length"
	// TextPlain 纯文本类型
	TextPlain = "text/plain; charset=utf-8"
	// ApplicationJson json类型
	ApplicationJson = "application/json"
)

// ErrInvalidHeader is returned by Validate when a handler produced a header field that
// cannot be written on the wire.
var ErrInvalidHeader = errors.New("invalid response header")

// Response is constructed by a handler and owned by the pipeline until it has been written.
type Response struct {
	// Version 协议版本，默认1.1
	Version string
	// StatusCode 状态码
	StatusCode int
	// Reason 状态描述，为空时使用标准描述
	Reason string
	// Headers 响应头
	Headers map[string]string
	// Body 响应体
	Body []byte
}

// NewResponse creates an empty response with the given status code.
func NewResponse(statusCode int) *Response {
	return &Response{
		Version:    "1.1",
		StatusCode: statusCode,
		Headers:    make(map[string]string),
	}
}

// ErrorResponse creates a plain-text response whose body is the status text.
func ErrorResponse(statusCode int) *Response {
	resp := NewResponse(statusCode)
	resp.SetBody(TextPlain, []byte(strconv.Itoa(statusCode)+" "+http.StatusText(statusCode)+"\n"))
	return resp
}

// SetHeader sets a header field, replacing any previous value.
func (r *Response) SetHeader(name, value string) *Response {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
	return r
}

// SetBody sets the body together with its Content-Type and Content-Length headers.
func (r *Response) SetBody(contentType string, body []byte) *Response {
	r.Body = body
	if contentType != "" {
		r.SetHeader(ContentType, contentType)
	}
	r.SetHeader(ContentLength, strconv.Itoa(len(body)))
	return r
}

// Validate checks the status code and every header field before the response is written.
func (r *Response) Validate() error {
	if r.StatusCode < 100 || r.StatusCode > 999 {
		return fmt.Errorf("%w: status code %d", ErrInvalidHeader, r.StatusCode)
	}
	for name, value := range r.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("%w: value of %s", ErrInvalidHeader, name)
		}
	}
	return nil
}

// StatusLine returns the status line without the trailing CRLF.
func (r *Response) StatusLine() string {
	version := r.Version
	if version == "" {
		version = "1.1"
	}
	reason := r.Reason
	if reason == "" {
		reason = http.StatusText(r.StatusCode)
	}
	return "HTTP/" + version + " " + strconv.Itoa(r.StatusCode) + " " + reason
}

// Bytes serializes the response. Header fields are written sorted by name.
func (r *Response) Bytes() []byte {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.Grow(64 + len(r.Body))
	buf.WriteString(r.StatusLine())
	buf.WriteString("\r\n")
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(r.Headers[name])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}
