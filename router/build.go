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
	"strings"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/config"
)

// 配置关键字
const (
	LocationKeyword = "location"
	// PathKeyword is an alias of LocationKeyword
	PathKeyword    = "path"
	RootKeyword    = "root"
	MethodsKeyword = "methods"
	DefaultKeyword = "default"
	// EchoLocation marks the shared echo rule: location echo { root /a; root /b; }
	EchoLocation = "echo"
)

// 匹配修饰符
const (
	ModifierExact        = "="
	ModifierRegexp       = "~"
	ModifierRegexpNoCase = "~*"
	ModifierTemplate     = "@"
)

// 内置处理器类型
const (
	EchoHandlerType     = "EchoHandler"
	StaticHandlerType   = "StaticHandler"
	NotFoundHandlerType = "NotFoundHandler"
)

// ErrConfiguration wraps every error found while building the table.
var ErrConfiguration = errors.New("configuration error")

type builder struct {
	config   types.Config
	rules    []*Rule
	echo     *ExactMatcher
	notFound types.Handler
	// created keeps every initialized handler so a failed build can destroy them
	created []types.Handler
}

// Build walks the configuration tree and produces the routing table.
// Rules keep document order; the first matching rule wins.
func Build(config types.Config, tree *config.Block) (*Table, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("%w: handler registry is not set", ErrConfiguration)
	}
	b := &builder{config: config}
	if err := b.walk(tree); err != nil {
		b.destroy()
		return nil, err
	}
	if b.notFound == nil {
		h, err := b.newHandler(NotFoundHandlerType, "", nil)
		if err != nil {
			b.destroy()
			return nil, err
		}
		b.notFound = h
	}
	table := NewTable(b.notFound, b.rules...)
	if config.Metrics != nil {
		config.Metrics.SetRoutes(table.RouteInfos())
	}
	return table, nil
}

func (b *builder) walk(block *config.Block) error {
	if block == nil {
		return nil
	}
	for _, st := range block.Statements {
		if st == nil {
			continue
		}
		switch st.Key() {
		case LocationKeyword, PathKeyword:
			if err := b.location(st); err != nil {
				return err
			}
		case DefaultKeyword:
			if err := b.defaultHandler(st); err != nil {
				return err
			}
		default:
			if err := b.walk(st.Block); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) location(st *config.Statement) error {
	args := st.Args()
	modifier := ""
	if len(args) > 0 && isModifier(args[0]) {
		modifier, args = args[0], args[1:]
	}
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("%w: %s without a path", ErrConfiguration, st.Key())
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: too many arguments in %s", ErrConfiguration, strings.Join(st.Tokens, " "))
	}
	pattern := args[0]
	kind := ""
	if len(args) == 2 {
		kind = args[1]
	}

	if modifier == "" && kind == "" && pattern == EchoLocation {
		return b.echoLocation(st)
	}
	if kind == "" {
		kind = StaticHandlerType
	}

	matcher, err := newMatcher(modifier, pattern)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrConfiguration, st.Key(), pattern, err)
	}
	handler, err := b.newHandler(kind, pattern, st.Block)
	if err != nil {
		return err
	}
	rule := NewRule(matcher, kind)
	methods := directArgs(st.Block, MethodsKeyword)
	if len(methods) == 0 {
		methods = []string{AnyMethod}
	}
	for i, m := range methods {
		methods[i] = strings.ToUpper(m)
	}
	rule.BindMethods(handler, methods...)
	b.rules = append(b.rules, rule)
	return nil
}

// echoLocation adds the root paths of the block to the shared echo rule,
// created at the position of the first echo location.
func (b *builder) echoLocation(st *config.Statement) error {
	roots := st.Block.FindAll(RootKeyword)
	if len(roots) == 0 {
		return nil
	}
	if b.echo == nil {
		handler, err := b.newHandler(EchoHandlerType, EchoLocation, nil)
		if err != nil {
			return err
		}
		b.echo = NewExactMatcher()
		b.rules = append(b.rules, NewRule(b.echo, EchoHandlerType).Bind(AnyMethod, handler))
	}
	b.echo.Add(roots...)
	return nil
}

func (b *builder) defaultHandler(st *config.Statement) error {
	kind := st.Value()
	if kind == "" {
		return fmt.Errorf("%w: default without a handler type", ErrConfiguration)
	}
	h, err := b.newHandler(kind, "", st.Block)
	if err != nil {
		return err
	}
	b.notFound = h
	return nil
}

func (b *builder) newHandler(kind, prefix string, block *config.Block) (types.Handler, error) {
	h, err := b.config.Registry.NewHandler(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := h.Init(b.config, prefix, block.ToConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: init %s for %q: %v", ErrConfiguration, kind, prefix, err)
	}
	b.created = append(b.created, h)
	return h, nil
}

func (b *builder) destroy() {
	for _, h := range b.created {
		h.Destroy()
	}
}

func isModifier(token string) bool {
	switch token {
	case ModifierExact, ModifierRegexp, ModifierRegexpNoCase, ModifierTemplate:
		return true
	}
	return false
}

func newMatcher(modifier, pattern string) (Matcher, error) {
	switch modifier {
	case ModifierExact:
		return NewExactMatcher(pattern), nil
	case ModifierRegexp:
		return NewRegexpMatcher(pattern, false)
	case ModifierRegexpNoCase:
		return NewRegexpMatcher(pattern, true)
	case ModifierTemplate:
		return NewTemplateMatcher(pattern)
	default:
		return &PrefixMatcher{Prefix: pattern}, nil
	}
}

// directArgs collects the arguments of statements with key in block, without descending.
func directArgs(block *config.Block, key string) []string {
	if block == nil {
		return nil
	}
	var values []string
	for _, st := range block.Statements {
		if st != nil && st.Key() == key {
			values = append(values, st.Args()...)
		}
	}
	return values
}
