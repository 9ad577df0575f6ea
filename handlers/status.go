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
package handlers

import (
	"errors"
	"fmt"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/api/types/metrics"
	"github.com/rulego/httpd/utils/json"
	"github.com/rulego/httpd/utils/maps"
)

const (
	// StatusHandlerType 组件类型
	StatusHandlerType = "StatusHandler"
	// FormatJson renders the report as JSON
	FormatJson = "json"
	// FormatText renders the report as plain text
	FormatText = "text"
)

func init() {
	Registry.Add(&StatusHandler{})
}

// StatusHandlerConfiguration 节点配置
type StatusHandlerConfiguration struct {
	// Format text或者json，默认text
	Format string
}

// StatusHandler reports the server metrics: connections, requests, status codes and the routing table.
type StatusHandler struct {
	Config  StatusHandlerConfiguration
	metrics *metrics.ServerMetrics
}

// Type 组件类型
func (x *StatusHandler) Type() string {
	return StatusHandlerType
}

func (x *StatusHandler) New() types.Handler {
	return &StatusHandler{Config: StatusHandlerConfiguration{Format: FormatText}}
}

// Init 初始化
func (x *StatusHandler) Init(config types.Config, _ string, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &x.Config); err != nil {
		return err
	}
	switch x.Config.Format {
	case "":
		x.Config.Format = FormatText
	case FormatText, FormatJson:
	default:
		return fmt.Errorf("unsupported status format: %s", x.Config.Format)
	}
	if config.Metrics == nil {
		return errors.New("metrics is not set")
	}
	x.metrics = config.Metrics
	return nil
}

// HandleRequest 处理请求
func (x *StatusHandler) HandleRequest(_ *types.Request) (*types.Response, error) {
	snapshot := x.metrics.Get()
	if x.Config.Format == FormatJson {
		body, err := json.Marshal(snapshot)
		if err != nil {
			return nil, err
		}
		return types.NewResponse(200).SetBody(types.ApplicationJson, body), nil
	}
	return types.NewResponse(200).SetBody(types.TextPlain, []byte(snapshot.String())), nil
}

// Destroy 销毁
func (x *StatusHandler) Destroy() {
}
