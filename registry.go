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
package httpd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/handlers"
)

// Registry 默认处理器注册器，包含handlers包的内置处理器
var Registry = new(HandlerComponentRegistry)

// 注册内置处理器
func init() {
	for _, h := range handlers.Registry.Components() {
		_ = Registry.Register(h)
	}
}

// HandlerComponentRegistry is the process-wide handler kind table. It is filled during
// package initialization; registering after a server has been built does not affect
// routing tables that already exist.
type HandlerComponentRegistry struct {
	// 处理器组件列表
	components map[string]types.Handler
	sync.RWMutex
}

// Register 注册处理器组件，类型已存在时返回错误
func (r *HandlerComponentRegistry) Register(handler types.Handler) error {
	r.Lock()
	defer r.Unlock()
	if r.components == nil {
		r.components = make(map[string]types.Handler)
	}
	if _, ok := r.components[handler.Type()]; ok {
		return errors.New("the component already exists. handlerType=" + handler.Type())
	}
	r.components[handler.Type()] = handler
	return nil
}

// Unregister 删除处理器组件
func (r *HandlerComponentRegistry) Unregister(handlerType string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.components[handlerType]; !ok {
		return fmt.Errorf("component not found. handlerType=%s", handlerType)
	}
	delete(r.components, handlerType)
	return nil
}

// NewHandler 创建处理器的新实例
func (r *HandlerComponentRegistry) NewHandler(handlerType string) (types.Handler, error) {
	r.RLock()
	defer r.RUnlock()
	if handler, ok := r.components[handlerType]; !ok {
		return nil, fmt.Errorf("component not found. handlerType=%s", handlerType)
	} else {
		return handler.New(), nil
	}
}

// GetComponents 返回已注册处理器的副本
func (r *HandlerComponentRegistry) GetComponents() map[string]types.Handler {
	r.RLock()
	defer r.RUnlock()
	var components = map[string]types.Handler{}
	for k, v := range r.components {
		components[k] = v
	}
	return components
}
