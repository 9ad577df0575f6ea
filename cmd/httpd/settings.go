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
package main

import (
	"errors"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rulego/httpd/api/types"
)

// Settings is the process configuration read from the ini file given with -c.
// Routing is not configured here but in the file named by Routes.
type Settings struct {
	// Routes 路由配置文件，支持json/yaml/toml
	Routes string `ini:"routes"`
	// Host 监听地址，端口来自路由配置的listen语句
	Host string `ini:"host"`
	// Workers 工作者数量
	Workers int `ini:"workers"`
	// LogFile 日志文件，为空时输出到标准输出
	LogFile string `ini:"log_file"`
	// LogMaxSize 单个日志文件最大大小，单位MB
	LogMaxSize int `ini:"log_max_size"`
	// LogMaxBackups 保留的旧日志文件数量
	LogMaxBackups int `ini:"log_max_backups"`
	// ReadTimeout 读超时，单位毫秒，0表示不限制
	ReadTimeout int `ini:"read_timeout"`
	// WriteTimeout 写超时，单位毫秒，0表示不限制
	WriteTimeout int `ini:"write_timeout"`
	// MaxHeaderBytes 请求头最大字节数
	MaxHeaderBytes int `ini:"max_header_bytes"`
	// MaxBodyBytes 请求体最大字节数，0表示不限制
	MaxBodyBytes int64 `ini:"max_body_bytes"`
	// MaxConnections 最大连接数，0表示不限制
	MaxConnections int `ini:"max_connections"`
	// StatusReportCron 定时打印状态报告的cron表达式，支持秒
	StatusReportCron string `ini:"status_report_cron"`
	// ScriptMaxExecutionTime 脚本最大执行时间，单位毫秒
	ScriptMaxExecutionTime int `ini:"script_max_execution_time"`
}

// DefaultSettings 默认配置
var DefaultSettings = Settings{
	Workers:                types.DefaultWorkers,
	LogMaxSize:             100,
	LogMaxBackups:          3,
	MaxHeaderBytes:         types.DefaultMaxHeaderBytes,
	ScriptMaxExecutionTime: int(types.DefaultScriptMaxExecutionTime / time.Millisecond),
}

// ErrRoutesRequired no routing configuration file was given
var ErrRoutesRequired = errors.New("routes file is required")

// LoadSettings reads an ini file on top of DefaultSettings.
func LoadSettings(file string) (Settings, error) {
	s := DefaultSettings
	if file == "" {
		return s, nil
	}
	cfg, err := ini.Load(file)
	if err != nil {
		return s, err
	}
	if err := cfg.MapTo(&s); err != nil {
		return s, err
	}
	return s, nil
}

// Options converts the settings into server options.
func (s Settings) Options(logger types.Logger) []types.Option {
	return []types.Option{
		types.WithLogger(logger),
		types.WithHost(s.Host),
		types.WithWorkers(s.Workers),
		types.WithReadTimeout(time.Duration(s.ReadTimeout) * time.Millisecond),
		types.WithWriteTimeout(time.Duration(s.WriteTimeout) * time.Millisecond),
		types.WithMaxHeaderBytes(s.MaxHeaderBytes),
		types.WithMaxBodyBytes(s.MaxBodyBytes),
		types.WithMaxConnections(s.MaxConnections),
		types.WithStatusReportCron(s.StatusReportCron),
		types.WithScriptMaxExecutionTime(time.Duration(s.ScriptMaxExecutionTime) * time.Millisecond),
	}
}

// 初始化日志记录器，配置了日志文件时按大小滚动
func (s Settings) newLogger() *log.Logger {
	var w io.Writer = os.Stdout
	if s.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    s.LogMaxSize,
			MaxBackups: s.LogMaxBackups,
		}
	}
	return log.New(w, "", log.LstdFlags)
}
