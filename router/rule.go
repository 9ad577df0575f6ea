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
package router

import (
	"github.com/rulego/httpd/api/types"
)

// AnyMethod binds a handler to every request method.
const AnyMethod = "*"

type methodBinding struct {
	method  string
	handler types.Handler
}

// Rule is one routing entry: a matcher plus an ordered method to handler binding.
type Rule struct {
	Matcher Matcher
	// HandlerType 处理器类型
	HandlerType string
	bindings    []methodBinding
	// owned 规则持有的处理器实例，按绑定顺序，每个实例一次
	owned []types.Handler
}

// NewRule creates a rule with no bindings.
func NewRule(matcher Matcher, handlerType string) *Rule {
	return &Rule{Matcher: matcher, HandlerType: handlerType}
}

// Bind adds a handler for method. The first binding for a method wins.
// Every Bind call counts as a distinct handler instance; use BindMethods to share
// one instance between several methods.
func (r *Rule) Bind(method string, handler types.Handler) *Rule {
	return r.BindMethods(handler, method)
}

// BindMethods binds one handler instance to each of methods.
func (r *Rule) BindMethods(handler types.Handler, methods ...string) *Rule {
	if len(methods) == 0 {
		return r
	}
	r.owned = append(r.owned, handler)
	for _, method := range methods {
		r.bindings = append(r.bindings, methodBinding{method: method, handler: handler})
	}
	return r
}

// HandlerFor returns the handler bound to method, or to AnyMethod.
func (r *Rule) HandlerFor(method string) (types.Handler, bool) {
	for _, b := range r.bindings {
		if b.method == method || b.method == AnyMethod {
			return b.handler, true
		}
	}
	return nil, false
}

// Methods lists the bound methods in binding order.
func (r *Rule) Methods() []string {
	var methods []string
	for _, b := range r.bindings {
		methods = append(methods, b.method)
	}
	return methods
}

func (r *Rule) handlers() []types.Handler {
	return r.owned
}
