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
	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/utils/maps"
)

// NotFoundHandlerType 组件类型
const NotFoundHandlerType = "NotFoundHandler"

func init() {
	Registry.Add(&NotFoundHandler{})
}

// NotFoundHandlerConfiguration 节点配置
type NotFoundHandlerConfiguration struct {
	// Body replaces the default "404 Not Found" text
	Body string
}

// NotFoundHandler answers 404 for every request. It is the table's fallback handler.
type NotFoundHandler struct {
	Config NotFoundHandlerConfiguration
}

// Type 组件类型
func (x *NotFoundHandler) Type() string {
	return NotFoundHandlerType
}

func (x *NotFoundHandler) New() types.Handler {
	return &NotFoundHandler{}
}

// Init 初始化
func (x *NotFoundHandler) Init(_ types.Config, _ string, configuration types.Configuration) error {
	return maps.Map2Struct(configuration, &x.Config)
}

// HandleRequest 处理请求
func (x *NotFoundHandler) HandleRequest(_ *types.Request) (*types.Response, error) {
	if x.Config.Body == "" {
		return types.ErrorResponse(404), nil
	}
	return types.NewResponse(404).SetBody(types.TextPlain, []byte(x.Config.Body)), nil
}

// Destroy 销毁
func (x *NotFoundHandler) Destroy() {
}
