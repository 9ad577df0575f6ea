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
package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/parser"
	"github.com/rulego/httpd/utils/runtime"
)

// State is the position of a connection in its request cycle.
type State int

const (
	// StateAwaitingHeader waits until a complete header section is buffered.
	StateAwaitingHeader State = iota
	// StateAwaitingBody waits until the declared Content-Length bytes are buffered.
	StateAwaitingBody
	// StateRouting resolves the handler and builds the response on the worker pool.
	StateRouting
	// StateAwaitingWrite waits until the response has been written.
	StateAwaitingWrite
	// StateClosed releases the connection.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "AwaitingHeader"
	case StateAwaitingBody:
		return "AwaitingBody"
	case StateRouting:
		return "Routing"
	case StateAwaitingWrite:
		return "AwaitingWrite"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

const readBufferSize = 4096

// conn is the pipeline of one accepted connection. It exclusively owns the socket and
// its buffers; only the Routing step leaves its goroutine, for a worker of the pool.
type conn struct {
	server *Server
	// id 连接ID
	id  string
	rwc net.Conn
	// buf holds received bytes not consumed yet, possibly the start of the next request
	buf     []byte
	readBuf []byte
	parser  *parser.HeaderParser
	state   State

	// per request
	req             *types.Request
	bodyLength      int64
	resp            *types.Response
	route           string
	closeAfterWrite bool
}

func newConn(s *Server, rwc net.Conn) *conn {
	c := &conn{
		server:  s,
		rwc:     rwc,
		readBuf: make([]byte, readBufferSize),
		parser:  parser.NewHeaderParser(s.Config.MaxHeaderBytes),
		state:   StateAwaitingHeader,
	}
	if id, err := uuid.NewV4(); err == nil {
		c.id = id.String()
	}
	return c
}

// serve drives the state machine until the connection is closed.
func (c *conn) serve() {
	defer c.close()
	for c.state != StateClosed {
		switch c.state {
		case StateAwaitingHeader:
			c.state = c.awaitHeader()
		case StateAwaitingBody:
			c.state = c.awaitBody()
		case StateRouting:
			c.state = c.routing()
		case StateAwaitingWrite:
			c.state = c.awaitWrite()
		default:
			c.state = StateClosed
		}
	}
}

func (c *conn) awaitHeader() State {
	c.req, c.resp, c.route = nil, nil, ""
	c.bodyLength, c.closeAfterWrite = 0, false
	c.parser.Reset()
	for {
		if len(c.buf) > 0 {
			req, n, err := c.parser.Parse(c.buf)
			switch {
			case err == nil:
				c.consume(n)
				return c.accept(req)
			case errors.Is(err, parser.ErrHeaderTooLarge):
				c.server.Printf("conn %s: %v", c.id, err)
				c.server.Config.Metrics.IncrementMalformed()
				return c.reject(431)
			case !errors.Is(err, parser.ErrNeedMore):
				c.server.Printf("conn %s: %v", c.id, err)
				c.server.Config.Metrics.IncrementMalformed()
				return c.reject(400)
			}
		}
		if err := c.fill(); err != nil {
			if len(c.buf) > 0 && errors.Is(err, io.EOF) {
				c.server.Printf("conn %s: closed by peer inside a request header", c.id)
			} else if !errors.Is(err, io.EOF) && !c.server.isClosing() {
				c.server.Printf("conn %s: read error:%v", c.id, err)
			}
			return StateClosed
		}
	}
}

// accept records a parsed header and decides whether a body follows.
func (c *conn) accept(req *types.Request) State {
	req.RemoteAddr = c.rwc.RemoteAddr().String()
	c.req = req
	c.server.Config.Metrics.IncrementRequests()
	length, present, err := parser.ContentLength(req)
	if err != nil {
		c.server.Printf("conn %s: %v", c.id, err)
		c.server.Config.Metrics.IncrementMalformed()
		return c.reject(400)
	}
	if !present {
		return StateRouting
	}
	if limit := c.server.Config.MaxBodyBytes; limit > 0 && length > limit {
		c.server.Printf("conn %s: body of %d bytes exceeds %d", c.id, length, limit)
		return c.reject(413)
	}
	c.bodyLength = length
	return StateAwaitingBody
}

func (c *conn) awaitBody() State {
	for int64(len(c.buf)) < c.bodyLength {
		if err := c.fill(); err != nil {
			if !c.server.isClosing() {
				c.server.Printf("conn %s: reading body:%v", c.id, err)
			}
			return StateClosed
		}
	}
	c.req.Body = make([]byte, c.bodyLength)
	copy(c.req.Body, c.buf)
	c.consume(int(c.bodyLength))
	return StateRouting
}

// routing hands the request to a worker and waits for the response.
func (c *conn) routing() State {
	req := c.req
	done := make(chan struct{})
	var (
		resp  *types.Response
		route string
		err   error
	)
	if submitErr := c.server.pool.Submit(func() {
		defer close(done)
		resp, route, err = c.server.process(req)
	}); submitErr != nil {
		c.server.Printf("conn %s: submit:%v", c.id, submitErr)
		return StateClosed
	}
	select {
	case <-done:
	case <-c.server.closing:
		return StateClosed
	}
	if err != nil {
		// a method the matching rule does not bind: no response is sent
		c.server.Printf("conn %s: %v", c.id, err)
		return StateClosed
	}
	c.resp, c.route = resp, route
	c.closeAfterWrite = !req.KeepAlive()
	return StateAwaitingWrite
}

func (c *conn) awaitWrite() State {
	if d := c.server.Config.WriteTimeout; d > 0 {
		_ = c.rwc.SetWriteDeadline(time.Now().Add(d))
	}
	_, err := c.rwc.Write(c.resp.Bytes())
	c.server.Config.Metrics.RecordResponse(c.route, c.resp.StatusCode)
	if err != nil {
		if !c.server.isClosing() {
			c.server.Printf("conn %s: write error:%v", c.id, err)
		}
		return StateClosed
	}
	if c.closeAfterWrite {
		return StateClosed
	}
	return StateAwaitingHeader
}

// reject answers with an error response and closes the connection afterwards.
func (c *conn) reject(statusCode int) State {
	c.resp = types.ErrorResponse(statusCode).SetHeader("Connection", "close")
	c.closeAfterWrite = true
	return StateAwaitingWrite
}

// fill appends at least one read from the socket to buf.
func (c *conn) fill() error {
	if d := c.server.Config.ReadTimeout; d > 0 {
		_ = c.rwc.SetReadDeadline(time.Now().Add(d))
	}
	for {
		n, err := c.rwc.Read(c.readBuf)
		if n > 0 {
			c.buf = append(c.buf, c.readBuf[:n]...)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// consume drops the first n buffered bytes, keeping the rest for the next step.
func (c *conn) consume(n int) {
	c.buf = append(c.buf[:0], c.buf[n:]...)
}

func (c *conn) close() {
	_ = c.rwc.Close()
	c.server.untrack(c)
	c.server.Config.Metrics.ConnectionClosed()
}

// process resolves the handler for req and invokes it. An error means the connection
// must be dropped without a response.
func (s *Server) process(req *types.Request) (*types.Response, string, error) {
	handler, rule, err := s.table.Route(req)
	if err != nil {
		return nil, "", err
	}
	route := ""
	if rule != nil {
		route = rule.Matcher.Pattern()
	}
	return s.invoke(handler, req), route, nil
}

// invoke runs the handler, turning errors, panics and invalid responses into a 500.
func (s *Server) invoke(handler types.Handler, req *types.Request) (resp *types.Response) {
	defer func() {
		if e := recover(); e != nil {
			s.Printf("handler %s panic:%v\n%s", handler.Type(), e, runtime.Stack())
			resp = types.ErrorResponse(500)
		}
	}()
	resp, err := handler.HandleRequest(req)
	if err != nil {
		s.Printf("handler %s %s %s error:%v", handler.Type(), req.Method, req.Path, err)
		return types.ErrorResponse(500)
	}
	if resp == nil {
		s.Printf("handler %s returned no response", handler.Type())
		return types.ErrorResponse(500)
	}
	if err := resp.Validate(); err != nil {
		s.Printf("handler %s: %v", handler.Type(), err)
		return types.ErrorResponse(500)
	}
	return resp
}
