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
	"time"

	"github.com/rulego/httpd/api/types/metrics"
)

const (
	// DefaultWorkers is the worker pool size used when none is configured.
	DefaultWorkers = 1
	// DefaultMaxHeaderBytes bounds the header section of a single request.
	DefaultMaxHeaderBytes = 8192
	// DefaultScriptMaxExecutionTime bounds a single script handler invocation.
	DefaultScriptMaxExecutionTime = 2000 * time.Millisecond
)

// Config defines the server-wide configuration shared by the listener,
// every connection pipeline and every handler.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// Registry is the handler registry used to resolve handler kinds named in the routing
	// configuration. NewServer falls back to the process-wide registry when it is nil.
	Registry HandlerRegistry
	// Pool executes routing and handler invocation. If not configured the server
	// creates a fixed-size worker pool with Workers workers.
	Pool Pool
	// Workers is the number of workers draining the shared task queue. Default 1.
	Workers int
	// Host is the interface the listener binds to. Empty means all interfaces.
	// The port always comes from the `listen` statement of the routing configuration.
	Host string
	// ReadTimeout bounds each wait for request bytes. 0 disables the deadline.
	ReadTimeout time.Duration
	// WriteTimeout bounds each response write. 0 disables the deadline.
	WriteTimeout time.Duration
	// MaxHeaderBytes bounds the request header section, terminator included.
	MaxHeaderBytes int
	// MaxBodyBytes bounds the declared Content-Length. 0 means unlimited.
	MaxBodyBytes int64
	// MaxConnections bounds concurrently open connections. 0 means unlimited.
	MaxConnections int
	// StatusReportCron is a cron spec (with seconds) for logging a periodic status report.
	// Empty disables the report.
	StatusReportCron string
	// ScriptMaxExecutionTime is the maximum execution time for script handlers.
	ScriptMaxExecutionTime time.Duration
	// Metrics collects connection and request statistics, read by the status handler.
	Metrics *metrics.ServerMetrics
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:                 DefaultLogger(),
		Workers:                DefaultWorkers,
		MaxHeaderBytes:         DefaultMaxHeaderBytes,
		ScriptMaxExecutionTime: DefaultScriptMaxExecutionTime,
		Metrics:                metrics.NewServerMetrics(),
	}
	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
