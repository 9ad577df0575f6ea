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
// Package server accepts TCP connections and runs one request pipeline per connection.
//
// Each connection is driven by its own goroutine through the states
// AwaitingHeader, AwaitingBody, Routing, AwaitingWrite and Closed. The goroutine performs
// the blocking socket reads and writes; the Routing step (route resolution and handler
// invocation) is executed by a fixed-size worker pool shared by all connections.
// A connection reads its next request only after the previous response has been written.
//
// Package server 接受TCP连接，并为每个连接运行一个请求处理流水线。
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/net/netutil"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/api/types/metrics"
	"github.com/rulego/httpd/router"
	"github.com/rulego/httpd/utils/pool"
)

// ErrServerClosed is returned by Serve after Stop.
var ErrServerClosed = errors.New("server closed")

// acceptRetryDelay throttles the accept loop after an accept error.
const acceptRetryDelay = 5 * time.Millisecond

// Server is an HTTP/1.1 server bound to one routing table.
type Server struct {
	// Config 服务器配置
	Config types.Config
	addr   string
	table  *router.Table
	pool   types.Pool
	// workerPool is set when the server created its own pool
	workerPool *pool.WorkerPool
	cron       *cron.Cron

	lock     sync.Mutex
	listener net.Listener
	conns    map[*conn]struct{}
	closing  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a server listening on addr (host:port) and routing with table.
// If config.Pool is nil the server runs its own pool of config.Workers workers.
func New(config types.Config, addr string, table *router.Table) *Server {
	config.Logger = types.NewLogger(config.Logger)
	if config.Metrics == nil {
		config.Metrics = metrics.NewServerMetrics()
	}
	s := &Server{
		Config:  config,
		addr:    addr,
		table:   table,
		conns:   make(map[*conn]struct{}),
		closing: make(chan struct{}),
	}
	if s.Config.Pool == nil {
		s.workerPool = &pool.WorkerPool{WorkersCount: config.Workers}
		s.pool = s.workerPool
	} else {
		s.pool = s.Config.Pool
	}
	return s
}

// Table returns the routing table.
func (s *Server) Table() *router.Table {
	return s.table
}

// Addr returns the bound address once listening, otherwise the configured one.
func (s *Server) Addr() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Listen binds the listener and starts the worker pool and the status report.
func (s *Server) Listen() error {
	if s.isClosing() {
		return ErrServerClosed
	}
	if spec := s.Config.StatusReportCron; spec != "" {
		s.cron = cron.New(cron.WithSeconds())
		if _, err := s.cron.AddFunc(spec, s.reportStatus); err != nil {
			return fmt.Errorf("invalid status report cron %q: %w", spec, err)
		}
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	if s.Config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.Config.MaxConnections)
	}
	s.lock.Lock()
	s.listener = ln
	s.lock.Unlock()

	if s.workerPool != nil {
		s.workerPool.Start()
	}
	if s.cron != nil {
		s.cron.Start()
	}
	s.Printf("starting server on %s with %d workers", ln.Addr().String(), s.workerCount())
	return nil
}

// Serve accepts connections until Stop is called, then returns ErrServerClosed.
// Accept errors are logged and do not stop the loop.
func (s *Server) Serve() error {
	s.lock.Lock()
	ln := s.listener
	s.lock.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}
	for {
		rwc, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				s.Printf("server on %s stopped", s.addr)
				return ErrServerClosed
			}
			s.Printf("accept:%v", err)
			time.Sleep(acceptRetryDelay)
			continue
		}
		c := newConn(s, rwc)
		if !s.track(c) {
			_ = rwc.Close()
			return ErrServerClosed
		}
		s.Config.Metrics.ConnectionOpened()
		go func() {
			defer s.wg.Done()
			c.serve()
		}()
	}
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		_ = s.Serve()
	}()
	return nil
}

// ListenAndServe listens and serves until Stop is called.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop closes the listener and every open connection, waits for the pipelines to exit,
// then stops the status report and the worker pool and destroys the handlers.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.closing)
		s.lock.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		for c := range s.conns {
			_ = c.rwc.Close()
		}
		s.lock.Unlock()

		s.wg.Wait()
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.workerPool != nil {
			s.workerPool.Stop()
			s.workerPool.Wait()
		}
		if s.table != nil {
			s.table.Destroy()
		}
	})
}

// Printf logs through the configured logger.
func (s *Server) Printf(format string, v ...interface{}) {
	if s.Config.Logger != nil {
		s.Config.Logger.Printf(format, v...)
	}
}

func (s *Server) isClosing() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

// track registers an accepted connection. It fails once the server is stopping.
func (s *Server) track(c *conn) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.isClosing() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *conn) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.conns, c)
}

func (s *Server) reportStatus() {
	s.Printf("status report\n%s", s.Config.Metrics.Get().String())
}

func (s *Server) workerCount() int {
	if s.workerPool == nil {
		return 0
	}
	if s.workerPool.WorkersCount < 1 {
		return 1
	}
	return s.workerPool.WorkersCount
}
