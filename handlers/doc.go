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
// Package handlers provides the built-in request handler kinds of the server.
// Every handler registers itself into Registry during package initialization and is
// selected by its type name in the routing configuration.
//
// Package handlers 提供服务器内置的请求处理器，处理器在包初始化时注册到Registry，
// 路由配置通过类型名称引用。
//
// Available Handlers:
// 可用的处理器：
//
//   - EchoHandler: reflects the raw request header and body
//     回显原始请求头和请求体
//   - StaticHandler: serves files below a configured root
//     提供root目录下的静态文件
//   - StatusHandler: reports connection and request statistics
//     报告连接和请求统计
//   - NotFoundHandler: terminal 404 handler for unmatched paths
//     未匹配路径的默认处理器
//   - ExprHandler: computes the response body with an expr expression
//     使用expr表达式计算响应体
//   - ScriptHandler: builds the response with a JavaScript function
//     使用JavaScript函数构建响应
//
// Configuration example:
// 配置示例：
//
//	location /static/ StaticHandler { root ./www; index index.html; }
//	location = /status StatusHandler { format json; }
//	location @ /users/:id ExprHandler { expr "'user ' + named.id"; }
package handlers

import "github.com/rulego/httpd/api/types"

// Registry 内置处理器列表
var Registry = new(types.SafeHandlerSlice)
