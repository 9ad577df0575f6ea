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

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithRegistry is an option that sets the handler registry of the Config.
func WithRegistry(registry HandlerRegistry) Option {
	return func(c *Config) error {
		c.Registry = registry
		return nil
	}
}

// WithPool is an option that sets the pool of the Config.
func WithPool(pool Pool) Option {
	return func(c *Config) error {
		c.Pool = pool
		return nil
	}
}

// WithWorkers is an option that sets the worker pool size of the Config.
func WithWorkers(workers int) Option {
	return func(c *Config) error {
		if workers > 0 {
			c.Workers = workers
		}
		return nil
	}
}

// WithHost is an option that sets the bind interface of the Config.
func WithHost(host string) Option {
	return func(c *Config) error {
		c.Host = host
		return nil
	}
}

// WithReadTimeout is an option that sets the per-read deadline of the Config.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.ReadTimeout = timeout
		return nil
	}
}

// WithWriteTimeout is an option that sets the per-write deadline of the Config.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.WriteTimeout = timeout
		return nil
	}
}

// WithMaxHeaderBytes is an option that sets the header size limit of the Config.
func WithMaxHeaderBytes(n int) Option {
	return func(c *Config) error {
		if n > 0 {
			c.MaxHeaderBytes = n
		}
		return nil
	}
}

// WithMaxBodyBytes is an option that sets the body size limit of the Config.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Config) error {
		c.MaxBodyBytes = n
		return nil
	}
}

// WithMaxConnections is an option that sets the open connection limit of the Config.
func WithMaxConnections(n int) Option {
	return func(c *Config) error {
		c.MaxConnections = n
		return nil
	}
}

// WithStatusReportCron is an option that sets the status report schedule of the Config.
func WithStatusReportCron(spec string) Option {
	return func(c *Config) error {
		c.StatusReportCron = spec
		return nil
	}
}

// WithScriptMaxExecutionTime is an option that sets the js max execution time of the Config.
func WithScriptMaxExecutionTime(scriptMaxExecutionTime time.Duration) Option {
	return func(c *Config) error {
		c.ScriptMaxExecutionTime = scriptMaxExecutionTime
		return nil
	}
}

// WithMetrics is an option that sets the metrics collector of the Config.
func WithMetrics(m *metrics.ServerMetrics) Option {
	return func(c *Config) error {
		c.Metrics = m
		return nil
	}
}
