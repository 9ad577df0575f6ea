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

package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteInfo describes one routing rule for status reporting.
type RouteInfo struct {
	Pattern     string   `json:"pattern"`
	Kind        string   `json:"kind"`
	HandlerType string   `json:"handlerType"`
	Methods     []string `json:"methods,omitempty"`
}

// ServerMetrics holds connection and request statistics of a server.
// Counters are updated by the connection pipelines and read by the status handler.
type ServerMetrics struct {
	CurrentConnections int64 // Number of currently open connections
	TotalConnections   int64 // Total number of accepted connections
	TotalRequests      int64 // Total number of parsed requests
	MalformedRequests  int64 // Number of requests rejected by the parser
	lock               sync.RWMutex
	statusCodes        map[int]int64
	routeRequests      map[string]int64
	routes             []RouteInfo
}

// Snapshot is a point-in-time copy of ServerMetrics.
type Snapshot struct {
	CurrentConnections int64            `json:"currentConnections"`
	TotalConnections   int64            `json:"totalConnections"`
	TotalRequests      int64            `json:"totalRequests"`
	MalformedRequests  int64            `json:"malformedRequests"`
	StatusCodes        map[string]int64 `json:"statusCodes"`
	RouteRequests      map[string]int64 `json:"routeRequests"`
	Routes             []RouteInfo      `json:"routes"`
}

// NewServerMetrics creates a new instance of ServerMetrics.
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		statusCodes:   make(map[int]int64),
		routeRequests: make(map[string]int64),
	}
}

// ConnectionOpened records an accepted connection.
func (m *ServerMetrics) ConnectionOpened() {
	atomic.AddInt64(&m.CurrentConnections, 1)
	atomic.AddInt64(&m.TotalConnections, 1)
}

// ConnectionClosed records a released connection.
func (m *ServerMetrics) ConnectionClosed() {
	atomic.AddInt64(&m.CurrentConnections, -1)
}

// IncrementRequests increases the count of parsed requests.
func (m *ServerMetrics) IncrementRequests() {
	atomic.AddInt64(&m.TotalRequests, 1)
}

// IncrementMalformed increases the count of rejected requests.
func (m *ServerMetrics) IncrementMalformed() {
	atomic.AddInt64(&m.MalformedRequests, 1)
}

// RecordResponse tallies a written response by status code and by route pattern.
func (m *ServerMetrics) RecordResponse(route string, statusCode int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	// 零值 ServerMetrics 也可用
	if m.statusCodes == nil {
		m.statusCodes = make(map[int]int64)
	}
	if m.routeRequests == nil {
		m.routeRequests = make(map[string]int64)
	}
	m.statusCodes[statusCode]++
	if route != "" {
		m.routeRequests[route]++
	}
}

// SetRoutes replaces the route listing. Called once when the routing table is built.
func (m *ServerMetrics) SetRoutes(routes []RouteInfo) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.routes = append([]RouteInfo(nil), routes...)
}

// Get returns a copy of the current metrics.
func (m *ServerMetrics) Get() Snapshot {
	s := Snapshot{
		CurrentConnections: atomic.LoadInt64(&m.CurrentConnections),
		TotalConnections:   atomic.LoadInt64(&m.TotalConnections),
		TotalRequests:      atomic.LoadInt64(&m.TotalRequests),
		MalformedRequests:  atomic.LoadInt64(&m.MalformedRequests),
		StatusCodes:        make(map[string]int64),
		RouteRequests:      make(map[string]int64),
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	for code, n := range m.statusCodes {
		s.StatusCodes[strconv.Itoa(code)] = n
	}
	for route, n := range m.routeRequests {
		s.RouteRequests[route] = n
	}
	s.Routes = append([]RouteInfo(nil), m.routes...)
	return s
}

// SortedStatusCodes returns the status codes of the snapshot in ascending order.
func (s Snapshot) SortedStatusCodes() []string {
	codes := make([]string, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Reset resets all counters to zero. The route listing is kept.
func (m *ServerMetrics) Reset() {
	atomic.StoreInt64(&m.CurrentConnections, 0)
	atomic.StoreInt64(&m.TotalConnections, 0)
	atomic.StoreInt64(&m.TotalRequests, 0)
	atomic.StoreInt64(&m.MalformedRequests, 0)
	m.lock.Lock()
	m.statusCodes = make(map[int]int64)
	m.routeRequests = make(map[string]int64)
	m.lock.Unlock()
}

// String renders the snapshot as text, one fact per line.
func (s Snapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "connections: current=%d total=%d\n", s.CurrentConnections, s.TotalConnections)
	fmt.Fprintf(&sb, "requests: total=%d malformed=%d\n", s.TotalRequests, s.MalformedRequests)
	for _, code := range s.SortedStatusCodes() {
		fmt.Fprintf(&sb, "status %s: %d\n", code, s.StatusCodes[code])
	}
	for _, r := range s.Routes {
		methods := "*"
		if len(r.Methods) > 0 {
			methods = strings.Join(r.Methods, ",")
		}
		fmt.Fprintf(&sb, "route %s %s %s [%s] requests=%d\n", r.Kind, r.Pattern, r.HandlerType, methods, s.RouteRequests[r.Pattern])
	}
	return sb.String()
}
