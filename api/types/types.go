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
	"sync"
)

// Configuration 组件配置类型
// A route block flattened to key/value pairs. Single-argument statements map to a string,
// multi-argument statements to a []string and nested blocks to a nested Configuration.
type Configuration map[string]interface{}

// Handler is the contract every route target implements.
// Implementations register a prototype into the HandlerRegistry; the routing table
// creates one instance per route through New and initialises it once with Init.
//
// HandleRequest may be invoked concurrently from any worker, so an initialised handler
// must only read its own state.
type Handler interface {
	//New 创建一个组件新实例
	New() Handler
	//Type 组件类型，类型不能重复。配置中通过该名称引用组件，例如：EchoHandler
	Type() string
	//Init 组件初始化，prefix 为路由匹配的路径，configuration 为路由块内的配置
	Init(config Config, prefix string, configuration Configuration) error
	//HandleRequest 处理请求并返回响应。返回错误时由连接转换为500响应
	HandleRequest(req *Request) (*Response, error)
	//Destroy 销毁，做一些资源释放操作
	Destroy()
}

// HandlerRegistry is the process-wide name -> factory table.
// It is populated during startup and only read afterwards.
type HandlerRegistry interface {
	//Register 注册组件，如果`handler.Type()`已经存在则返回一个`已存在`错误
	Register(handler Handler) error
	//Unregister 删除组件
	Unregister(handlerType string) error
	//NewHandler 通过handlerType创建一个新的handler实例
	NewHandler(handlerType string) (Handler, error)
	//GetComponents 获取所有注册组件列表
	GetComponents() map[string]Handler
}

// Pool executes routing and handler invocation for parsed requests.
type Pool interface {
	//Submit 提交任务，任务队列已满时阻塞
	Submit(task func()) error
	//Release 释放
	Release()
}

// SafeHandlerSlice 安全的组件列表切片
type SafeHandlerSlice struct {
	//组件列表
	components []Handler
	sync.Mutex
}

// Add 线程安全地添加元素
func (p *SafeHandlerSlice) Add(handlers ...Handler) {
	p.Lock()
	defer p.Unlock()
	p.components = append(p.components, handlers...)
}

// Components 获取组件列表
func (p *SafeHandlerSlice) Components() []Handler {
	p.Lock()
	defer p.Unlock()
	return p.components
}
