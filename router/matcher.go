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
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// 匹配类型
const (
	KindPrefix   = "prefix"
	KindExact    = "exact"
	KindRegexp   = "regexp"
	KindTemplate = "template"
)

// Matcher decides whether a rule applies to a request path.
type Matcher interface {
	// Match reports whether path matches, with the positional and named captures.
	Match(path string) (params []string, named map[string]string, ok bool)
	// Pattern is the configured pattern, for diagnostics.
	Pattern() string
	// Kind is one of KindPrefix, KindExact, KindRegexp or KindTemplate.
	Kind() string
}

// PrefixMatcher matches every path starting with Prefix.
type PrefixMatcher struct {
	Prefix string
}

func (m *PrefixMatcher) Match(path string) ([]string, map[string]string, bool) {
	return nil, nil, strings.HasPrefix(path, m.Prefix)
}

func (m *PrefixMatcher) Pattern() string {
	return m.Prefix
}

func (m *PrefixMatcher) Kind() string {
	return KindPrefix
}

// ExactMatcher matches a set of literal paths.
type ExactMatcher struct {
	paths []string
	set   map[string]struct{}
}

// NewExactMatcher creates a matcher for the given paths.
func NewExactMatcher(paths ...string) *ExactMatcher {
	m := &ExactMatcher{set: make(map[string]struct{})}
	m.Add(paths...)
	return m
}

// Add extends the set. Only used while the table is being built.
func (m *ExactMatcher) Add(paths ...string) {
	for _, p := range paths {
		if _, ok := m.set[p]; ok {
			continue
		}
		m.set[p] = struct{}{}
		m.paths = append(m.paths, p)
	}
}

// Paths returns the matched paths in insertion order.
func (m *ExactMatcher) Paths() []string {
	return append([]string(nil), m.paths...)
}

func (m *ExactMatcher) Match(path string) ([]string, map[string]string, bool) {
	_, ok := m.set[path]
	return nil, nil, ok
}

func (m *ExactMatcher) Pattern() string {
	return strings.Join(m.paths, ",")
}

func (m *ExactMatcher) Kind() string {
	return KindExact
}

// RegexpMatcher matches paths against a regular expression. Capture groups become
// route parameters and named groups are exposed by name as well.
type RegexpMatcher struct {
	expr   string
	regexp *regexp.Regexp
}

// NewRegexpMatcher compiles expr. caseInsensitive prepends the (?i) flag.
func NewRegexpMatcher(expr string, caseInsensitive bool) (*RegexpMatcher, error) {
	source := expr
	if caseInsensitive {
		source = "(?i)" + expr
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	return &RegexpMatcher{expr: expr, regexp: re}, nil
}

func (m *RegexpMatcher) Match(path string) ([]string, map[string]string, bool) {
	groups := m.regexp.FindStringSubmatch(path)
	if groups == nil {
		return nil, nil, false
	}
	var named map[string]string
	for i, name := range m.regexp.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if named == nil {
			named = make(map[string]string)
		}
		named[name] = groups[i]
	}
	return groups[1:], named, true
}

func (m *RegexpMatcher) Pattern() string {
	return m.expr
}

func (m *RegexpMatcher) Kind() string {
	return KindRegexp
}

// TemplateMatcher matches httprouter path templates such as /users/:id or /files/*path.
// The query component is ignored.
type TemplateMatcher struct {
	template string
	router   *httprouter.Router
}

// matchMethod is the pseudo method the template is registered under.
const matchMethod = "MATCH"

// NewTemplateMatcher validates and registers the template.
func NewTemplateMatcher(template string) (m *TemplateMatcher, err error) {
	defer func() {
		// httprouter reports invalid templates by panicking
		if e := recover(); e != nil {
			m, err = nil, fmt.Errorf("invalid path template %q: %v", template, e)
		}
	}()
	r := httprouter.New()
	r.Handle(matchMethod, template, func(http.ResponseWriter, *http.Request, httprouter.Params) {})
	return &TemplateMatcher{template: template, router: r}, nil
}

func (m *TemplateMatcher) Match(path string) ([]string, map[string]string, bool) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	handle, ps, _ := m.router.Lookup(matchMethod, path)
	if handle == nil {
		return nil, nil, false
	}
	params := make([]string, 0, len(ps))
	named := make(map[string]string, len(ps))
	for _, p := range ps {
		params = append(params, p.Value)
		named[p.Key] = p.Value
	}
	return params, named, true
}

func (m *TemplateMatcher) Pattern() string {
	return m.template
}

func (m *TemplateMatcher) Kind() string {
	return KindTemplate
}
