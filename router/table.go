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
	"errors"
	"fmt"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/api/types/metrics"
)

// ErrMethodNotAllowed is returned by Route when the first matching rule has no handler
// for the request method. The connection is dropped without a response.
var ErrMethodNotAllowed = errors.New("method not allowed")

// Match is the result of resolving a path.
type Match struct {
	Rule   *Rule
	Params []string
	Named  map[string]string
}

// Table is the immutable routing table built from the configuration tree.
// It is safe for concurrent use once built.
type Table struct {
	rules    []*Rule
	notFound types.Handler
}

// NewTable creates a table. notFound serves paths no rule matches.
func NewTable(notFound types.Handler, rules ...*Rule) *Table {
	return &Table{rules: rules, notFound: notFound}
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []*Rule {
	return append([]*Rule(nil), t.rules...)
}

// NotFound returns the fallback handler.
func (t *Table) NotFound() types.Handler {
	return t.notFound
}

// Resolve finds the first rule matching path. ok is false when no rule matches.
func (t *Table) Resolve(path string) (Match, bool) {
	for _, rule := range t.rules {
		if params, named, ok := rule.Matcher.Match(path); ok {
			return Match{Rule: rule, Params: params, Named: named}, true
		}
	}
	return Match{}, false
}

// Route picks the handler for req and fills its route parameters.
// Unmatched requests get the not-found handler with a nil rule.
func (t *Table) Route(req *types.Request) (types.Handler, *Rule, error) {
	m, ok := t.Resolve(req.Path)
	if !ok {
		return t.notFound, nil, nil
	}
	h, ok := m.Rule.HandlerFor(req.Method)
	if !ok {
		return nil, m.Rule, fmt.Errorf("%w: %s %s matched %s", ErrMethodNotAllowed, req.Method, req.Path, m.Rule.Matcher.Pattern())
	}
	req.Params = m.Params
	req.NamedParams = m.Named
	return h, m.Rule, nil
}

// RouteInfos describes the table for the status page.
func (t *Table) RouteInfos() []metrics.RouteInfo {
	infos := make([]metrics.RouteInfo, 0, len(t.rules))
	for _, r := range t.rules {
		infos = append(infos, metrics.RouteInfo{
			Pattern:     r.Matcher.Pattern(),
			Kind:        r.Matcher.Kind(),
			HandlerType: r.HandlerType,
			Methods:     r.Methods(),
		})
	}
	return infos
}

// Destroy releases every handler in the table.
// Each rule owns its handler instances, so every instance is destroyed exactly once.
func (t *Table) Destroy() {
	for _, r := range t.rules {
		for _, h := range r.handlers() {
			h.Destroy()
		}
	}
	if t.notFound != nil {
		t.notFound.Destroy()
	}
}
