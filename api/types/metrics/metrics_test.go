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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerMetrics(t *testing.T) {
	m := NewServerMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ConnectionOpened()
			m.IncrementRequests()
			m.RecordResponse("/", 200)
		}()
	}
	wg.Wait()
	m.ConnectionClosed()
	m.IncrementMalformed()
	m.RecordResponse("", 400)
	m.SetRoutes([]RouteInfo{{Pattern: "/", Kind: "prefix", HandlerType: "EchoHandler"}})

	s := m.Get()
	assert.Equal(t, int64(9), s.CurrentConnections)
	assert.Equal(t, int64(10), s.TotalConnections)
	assert.Equal(t, int64(10), s.TotalRequests)
	assert.Equal(t, int64(1), s.MalformedRequests)
	assert.Equal(t, map[string]int64{"200": 10, "400": 1}, s.StatusCodes)
	assert.Equal(t, map[string]int64{"/": 10}, s.RouteRequests)
	assert.Equal(t, []string{"200", "400"}, s.SortedStatusCodes())

	assert.Equal(t, "connections: current=9 total=10\n"+
		"requests: total=10 malformed=1\n"+
		"status 200: 10\n"+
		"status 400: 1\n"+
		"route prefix / EchoHandler [*] requests=10\n", s.String())

	m.Reset()
	s = m.Get()
	assert.Equal(t, int64(0), s.TotalConnections)
	assert.Empty(t, s.StatusCodes)
	assert.Equal(t, 1, len(s.Routes))
}

func TestZeroValueServerMetrics(t *testing.T) {
	m := &ServerMetrics{}
	m.IncrementRequests()
	m.RecordResponse("/", 200)
	m.RecordResponse("", 404)
	s := m.Get()
	assert.Equal(t, int64(1), s.TotalRequests)
	assert.Equal(t, int64(1), s.StatusCodes["200"])
	assert.Equal(t, int64(1), s.StatusCodes["404"])
	assert.Equal(t, int64(1), s.RouteRequests["/"])
}
