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
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/config"
	"github.com/rulego/httpd/handlers"
	"github.com/rulego/httpd/router"
)

type testRegistry struct {
	components map[string]types.Handler
}

func newTestRegistry(extra ...types.Handler) *testRegistry {
	r := &testRegistry{components: make(map[string]types.Handler)}
	for _, h := range append(handlers.Registry.Components(), extra...) {
		r.components[h.Type()] = h
	}
	return r
}

func (r *testRegistry) Register(h types.Handler) error {
	r.components[h.Type()] = h
	return nil
}

func (r *testRegistry) Unregister(handlerType string) error {
	delete(r.components, handlerType)
	return nil
}

func (r *testRegistry) NewHandler(handlerType string) (types.Handler, error) {
	h, ok := r.components[handlerType]
	if !ok {
		return nil, fmt.Errorf("component not found. handlerType=%s", handlerType)
	}
	return h.New(), nil
}

func (r *testRegistry) GetComponents() map[string]types.Handler {
	return r.components
}

// scriptedHandler counts its calls and reports what it received, panics, fails or produces an invalid response depending on the path.
type scriptedHandler struct {
}

var scriptedCalls int32

func (h *scriptedHandler) New() types.Handler {
	return &scriptedHandler{}
}

func (h *scriptedHandler) Type() string {
	return "ScriptedHandler"
}

func (h *scriptedHandler) Init(types.Config, string, types.Configuration) error {
	return nil
}

func (h *scriptedHandler) HandleRequest(req *types.Request) (*types.Response, error) {
	atomic.AddInt32(&scriptedCalls, 1)
	switch req.Path {
	case "/scripted/panic":
		panic("boom")
	case "/scripted/error":
		return nil, errors.New("failed")
	case "/scripted/nil":
		return nil, nil
	case "/scripted/body":
		state := "absent"
		if req.HasBody() {
			state = fmt.Sprintf("%d bytes", len(req.Body))
		}
		return types.NewResponse(200).SetBody(types.TextPlain, []byte(state)), nil
	default:
		return types.NewResponse(200).SetHeader("Bad Name", "x"), nil
	}
}

func (h *scriptedHandler) Destroy() {
}

type recordLogger struct {
	sync.Mutex
	lines []string
}

func (l *recordLogger) Printf(format string, v ...interface{}) {
	l.Lock()
	defer l.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordLogger) contains(s string) bool {
	l.Lock()
	defer l.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func location(tokens ...string) *config.Statement {
	return config.NewStatement(append([]string{"location"}, tokens...)...)
}

func newTestServer(t *testing.T, tree *config.Block, opts ...types.Option) *Server {
	base := []types.Option{
		types.WithLogger(types.DiscardLogger()),
		types.WithRegistry(newTestRegistry(&scriptedHandler{})),
	}
	c := types.NewConfig(append(base, opts...)...)
	table, err := router.Build(c, tree)
	assert.Nil(t, err)
	s := New(c, "127.0.0.1:0", table)
	assert.Nil(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func echoTree() *config.Block {
	return config.NewBlock(location("/", "EchoHandler").WithBlock())
}

func dial(t *testing.T, s *Server) net.Conn {
	conn, err := net.Dial("tcp", s.Addr())
	assert.Nil(t, err)
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readResponse(t *testing.T, r *bufio.Reader) (*http.Response, string) {
	resp, err := http.ReadResponse(r, nil)
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	body, err := io.ReadAll(resp.Body)
	assert.Nil(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

// assertClosed expects the server to close the connection without sending anything more.
func assertClosed(t *testing.T, r *bufio.Reader) {
	_, err := r.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func write(t *testing.T, conn net.Conn, data string) {
	_, err := conn.Write([]byte(data))
	assert.Nil(t, err)
}

func TestEchoScenario(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	raw := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	write(t, conn, raw)
	resp, body := readResponse(t, bufio.NewReader(conn))
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, raw, body)
	assert.True(t, strings.HasPrefix(body, "GET / HTTP/1.1"))
	assert.True(t, strings.Contains(body, "Host: x"))
}

func TestKeepAlive(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	r := bufio.NewReader(conn)

	write(t, conn, "GET /one HTTP/1.1\r\n\r\n")
	_, body := readResponse(t, r)
	assert.Equal(t, "GET /one HTTP/1.1\r\n\r\n", body)

	write(t, conn, "POST /two HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc")
	_, body = readResponse(t, r)
	assert.Equal(t, "POST /two HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc", body)

	snapshot := s.Config.Metrics.Get()
	assert.Equal(t, int64(1), snapshot.TotalConnections)
	assert.Equal(t, int64(2), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.StatusCodes["200"])
	assert.Equal(t, int64(2), snapshot.RouteRequests["/"])
}

func TestHTTP10Closes(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET / HTTP/1.0\r\n\r\n")
	resp, _ := readResponse(t, r)
	assert.Equal(t, 200, resp.StatusCode)
	assertClosed(t, r)
}

func TestUnparsableVersionCloses(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET / HTTP/x\r\n\r\n")
	resp, _ := readResponse(t, r)
	assert.Equal(t, 200, resp.StatusCode)
	assertClosed(t, r)
}

func TestSplitReads(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	request := "POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789"
	for _, part := range []string{"POST /ec", "ho HTTP/1.1\r\nContent-Le", "ngth: 10\r", "\n\r", "\n01234", "567", "89"} {
		write(t, conn, part)
		time.Sleep(20 * time.Millisecond)
	}
	resp, body := readResponse(t, bufio.NewReader(conn))
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, request, body)
}

func TestBufferedNextRequest(t *testing.T) {
	s := newTestServer(t, echoTree())
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	first := "POST /a HTTP/1.1\r\nContent-Length: 2\r\n\r\nhi"
	second := "GET /b HTTP/1.0\r\n\r\n"
	write(t, conn, first+second)

	_, body := readResponse(t, r)
	assert.Equal(t, first, body)
	_, body = readResponse(t, r)
	assert.Equal(t, second, body)
	assertClosed(t, r)
}

func TestDeclaredEmptyBody(t *testing.T) {
	s := newTestServer(t, config.NewBlock(location("/scripted/", "ScriptedHandler").WithBlock()))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "POST /scripted/body HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	_, body := readResponse(t, r)
	assert.Equal(t, "0 bytes", body)

	write(t, conn, "GET /scripted/body HTTP/1.1\r\n\r\n")
	_, body = readResponse(t, r)
	assert.Equal(t, "absent", body)
}

func TestBodyReadErrorCloses(t *testing.T) {
	atomic.StoreInt32(&scriptedCalls, 0)
	s := newTestServer(t, config.NewBlock(location("/scripted/", "ScriptedHandler").WithBlock()))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	// 声明 10 字节，只发送 4 字节后关闭写端
	write(t, conn, "POST /scripted/body HTTP/1.1\r\nContent-Length: 10\r\n\r\nabcd")
	assert.Nil(t, conn.(*net.TCPConn).CloseWrite())
	assertClosed(t, r)

	assert.Equal(t, int32(0), atomic.LoadInt32(&scriptedCalls))
	snapshot := s.Config.Metrics.Get()
	assert.Equal(t, 0, len(snapshot.StatusCodes))
	assert.Equal(t, int64(1), snapshot.TotalRequests)
}

func TestMalformedRequest(t *testing.T) {
	tests := []string{
		"GARBAGE\r\n\r\n",
		"GET / FTP/1.1\r\n\r\n",
		"\r\n\r\n",
		"POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
		"POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n",
	}
	s := newTestServer(t, echoTree())
	for _, request := range tests {
		conn := dial(t, s)
		r := bufio.NewReader(conn)
		write(t, conn, request)
		resp, body := readResponse(t, r)
		assert.Equal(t, 400, resp.StatusCode, request)
		assert.Equal(t, "400 Bad Request\n", body)
		assertClosed(t, r)
	}
	assert.Equal(t, int64(len(tests)), s.Config.Metrics.Get().MalformedRequests)
}

func TestHeaderTooLarge(t *testing.T) {
	s := newTestServer(t, echoTree(), types.WithMaxHeaderBytes(64))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET /"+strings.Repeat("a", 100)+" HTTP/1.1\r\n")
	resp, _ := readResponse(t, r)
	assert.Equal(t, 431, resp.StatusCode)
	assertClosed(t, r)
}

func TestBodyTooLarge(t *testing.T) {
	s := newTestServer(t, echoTree(), types.WithMaxBodyBytes(8))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "POST / HTTP/1.1\r\nContent-Length: 9\r\n\r\n")
	resp, _ := readResponse(t, r)
	assert.Equal(t, 413, resp.StatusCode)
	assertClosed(t, r)
}

func TestMethodMismatchCloses(t *testing.T) {
	logger := &recordLogger{}
	tree := config.NewBlock(
		location("/submit", "EchoHandler").WithBlock(config.NewStatement("methods", "POST")),
		location("/", "EchoHandler").WithBlock(),
	)
	s := newTestServer(t, tree, types.WithLogger(logger))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET /submit HTTP/1.1\r\n\r\n")
	assertClosed(t, r)
	assert.True(t, logger.contains(router.ErrMethodNotAllowed.Error()))
}

func TestFirstMatchWins(t *testing.T) {
	tree := config.NewBlock(
		location("/api", "StatusHandler").WithBlock(),
		location("/api/echo", "EchoHandler").WithBlock(),
	)
	s := newTestServer(t, tree)
	conn := dial(t, s)
	write(t, conn, "GET /api/echo HTTP/1.1\r\n\r\n")
	_, body := readResponse(t, bufio.NewReader(conn))
	assert.True(t, strings.HasPrefix(body, "connections:"), body)
}

func TestNotFound(t *testing.T) {
	tree := config.NewBlock(location("/api", "EchoHandler").WithBlock())
	s := newTestServer(t, tree)
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET /other HTTP/1.1\r\n\r\n")
	resp, body := readResponse(t, r)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "404 Not Found\n", body)

	// the connection stays usable
	write(t, conn, "GET /api HTTP/1.1\r\n\r\n")
	resp, _ = readResponse(t, r)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestStaticMissingFile(t *testing.T) {
	tree := config.NewBlock(location("/static/", "StaticHandler").WithBlock(config.NewStatement("root", t.TempDir())))
	s := newTestServer(t, tree)
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	write(t, conn, "GET /static/missing.txt HTTP/1.0\r\n\r\n")
	resp, _ := readResponse(t, r)
	assert.True(t, resp.StatusCode >= 400)
	assertClosed(t, r)
}

func TestHandlerFailures(t *testing.T) {
	logger := &recordLogger{}
	tree := config.NewBlock(location("/scripted/", "ScriptedHandler").WithBlock())
	s := newTestServer(t, tree, types.WithLogger(logger))
	conn := dial(t, s)
	r := bufio.NewReader(conn)
	for _, path := range []string{"/scripted/panic", "/scripted/error", "/scripted/nil", "/scripted/header"} {
		write(t, conn, "GET "+path+" HTTP/1.1\r\n\r\n")
		resp, body := readResponse(t, r)
		assert.Equal(t, 500, resp.StatusCode, path)
		assert.Equal(t, "500 Internal Server Error\n", body)
	}
	assert.True(t, logger.contains("panic:boom"))
}

func TestConcurrentConnections(t *testing.T) {
	s := newTestServer(t, echoTree(), types.WithWorkers(2))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", s.Addr())
			if !assert.Nil(t, err) {
				return
			}
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
			request := fmt.Sprintf("GET /%d HTTP/1.0\r\n\r\n", i)
			_, _ = conn.Write([]byte(request))
			resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
			if !assert.Nil(t, err) {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, request, string(body))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(20), s.Config.Metrics.Get().TotalConnections)
}

func TestStop(t *testing.T) {
	c := types.NewConfig(types.WithLogger(types.DiscardLogger()), types.WithRegistry(newTestRegistry()))
	table, err := router.Build(c, echoTree())
	assert.Nil(t, err)
	s := New(c, "127.0.0.1:0", table)
	assert.Nil(t, s.Listen())
	served := make(chan error, 1)
	go func() {
		served <- s.Serve()
	}()

	conn, err := net.Dial("tcp", s.Addr())
	assert.Nil(t, err)
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(conn)
	_, _ = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	readResponse(t, r)

	s.Stop()
	assert.Equal(t, ErrServerClosed, <-served)
	// idle keep-alive connections are closed too
	assertClosed(t, r)
	assert.Equal(t, int64(0), s.Config.Metrics.Get().CurrentConnections)
	_, err = net.Dial("tcp", s.Addr())
	assert.NotNil(t, err)
	s.Stop()
}

func TestMaxConnections(t *testing.T) {
	s := newTestServer(t, echoTree(), types.WithMaxConnections(1))
	first := dial(t, s)
	write(t, first, "GET / HTTP/1.1\r\n\r\n")
	readResponse(t, bufio.NewReader(first))

	// the second connection is only accepted once the first one is closed
	second := dial(t, s)
	write(t, second, "GET / HTTP/1.1\r\n\r\n")
	_ = second.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, err := bufio.NewReader(second).ReadByte()
	assert.NotNil(t, err)

	_ = first.Close()
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, _ := readResponse(t, bufio.NewReader(second))
	assert.Equal(t, 200, resp.StatusCode)
}

func TestReadTimeout(t *testing.T) {
	s := newTestServer(t, echoTree(), types.WithReadTimeout(100*time.Millisecond))
	conn := dial(t, s)
	write(t, conn, "GET / HT")
	assertClosed(t, bufio.NewReader(conn))
}

func TestStatusReportCron(t *testing.T) {
	logger := &recordLogger{}
	newTestServer(t, echoTree(), types.WithLogger(logger), types.WithStatusReportCron("* * * * * *"))
	deadline := time.Now().Add(3 * time.Second)
	for !logger.contains("status report") && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	assert.True(t, logger.contains("status report"))
}

func TestInvalidStatusReportCron(t *testing.T) {
	c := types.NewConfig(types.WithLogger(types.DiscardLogger()), types.WithRegistry(newTestRegistry()),
		types.WithStatusReportCron("not a cron"))
	table, err := router.Build(c, echoTree())
	assert.Nil(t, err)
	s := New(c, "127.0.0.1:0", table)
	assert.NotNil(t, s.Listen())
	s.Stop()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "AwaitingHeader", StateAwaitingHeader.String())
	assert.Equal(t, "AwaitingBody", StateAwaitingBody.String())
	assert.Equal(t, "Routing", StateRouting.String())
	assert.Equal(t, "AwaitingWrite", StateAwaitingWrite.String())
	assert.Equal(t, "Closed", StateClosed.String())
	assert.Equal(t, "Unknown", State(42).String())
}
