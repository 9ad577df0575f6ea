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
)

// EchoHandlerType 组件类型
const EchoHandlerType = "EchoHandler"

func init() {
	Registry.Add(&EchoHandler{})
}

// EchoHandler answers with the request it received: the raw header section followed by the body.
type EchoHandler struct {
}

// Type 组件类型
func (x *EchoHandler) Type() string {
	return EchoHandlerType
}

func (x *EchoHandler) New() types.Handler {
	return &EchoHandler{}
}

// Init 初始化，回显处理器没有配置
func (x *EchoHandler) Init(_ types.Config, _ string, _ types.Configuration) error {
	return nil
}

// HandleRequest 处理请求
func (x *EchoHandler) HandleRequest(req *types.Request) (*types.Response, error) {
	body := make([]byte, 0, len(req.RawHeader)+len(req.Body))
	body = append(body, req.RawHeader...)
	body = append(body, req.Body...)
	return types.NewResponse(200).SetBody(types.TextPlain, body), nil
}

// Destroy 销毁
func (x *EchoHandler) Destroy() {
}
