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

// Package config holds the hierarchical configuration tree consumed by the server.
//
// A tree is a Block of ordered Statements. Each Statement has an ordered token list
// and an optional nested Block, which is the shape of an nginx-style configuration file:
//
//	listen 8080;
//	location /static/ StaticHandler {
//	    root ./www;
//	}
//
// The text grammar itself is not parsed here. Trees are built in code or decoded from
// JSON, YAML or TOML documents with the same shape (see Load).
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rulego/httpd/api/types"
)

const (
	// ListenKeyword is the statement supplying the bind port.
	ListenKeyword = "listen"
	// DefaultPort is used when no listen statement is present.
	DefaultPort = 8080
)

// ErrInvalidPort is returned when a listen statement does not carry a valid port.
var ErrInvalidPort = errors.New("invalid listen port")

// Statement is one configuration statement.
type Statement struct {
	// Tokens 语句的词法单元，第一个为键
	Tokens []string `json:"tokens" yaml:"tokens" toml:"tokens"`
	// Block 子块，可为空
	Block *Block `json:"block,omitempty" yaml:"block,omitempty" toml:"block,omitempty"`
}

// Block is an ordered list of statements.
type Block struct {
	Statements []*Statement `json:"statements" yaml:"statements" toml:"statement"`
}

// NewBlock creates a block holding the given statements.
func NewBlock(statements ...*Statement) *Block {
	return &Block{Statements: statements}
}

// NewStatement creates a statement without a child block.
func NewStatement(tokens ...string) *Statement {
	return &Statement{Tokens: tokens}
}

// WithBlock attaches a child block made of the given statements.
func (s *Statement) WithBlock(statements ...*Statement) *Statement {
	s.Block = NewBlock(statements...)
	return s
}

// Key returns the first token, or "" for an empty statement.
func (s *Statement) Key() string {
	if len(s.Tokens) == 0 {
		return ""
	}
	return s.Tokens[0]
}

// Args returns every token after the key.
func (s *Statement) Args() []string {
	if len(s.Tokens) < 2 {
		return nil
	}
	return s.Tokens[1:]
}

// Value returns the second token, or "" when absent.
func (s *Statement) Value() string {
	if len(s.Tokens) < 2 {
		return ""
	}
	return s.Tokens[1]
}

// Find returns the first statement with the given key and a non-empty value,
// searching depth-first in document order.
func (b *Block) Find(key string) *Statement {
	if b == nil {
		return nil
	}
	for _, st := range b.Statements {
		if st == nil {
			continue
		}
		if st.Key() == key && st.Value() != "" {
			return st
		}
		if found := st.Block.Find(key); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every value of statements with the given key, depth-first.
func (b *Block) FindAll(key string) []string {
	if b == nil {
		return nil
	}
	var values []string
	for _, st := range b.Statements {
		if st == nil {
			continue
		}
		if st.Key() == key && st.Value() != "" {
			values = append(values, st.Value())
		}
		values = append(values, st.Block.FindAll(key)...)
	}
	return values
}

// ListenPort returns the port of the first listen statement found anywhere in the tree,
// or DefaultPort when there is none.
func ListenPort(b *Block) (int, error) {
	st := b.Find(ListenKeyword)
	if st == nil {
		return DefaultPort, nil
	}
	port, err := strconv.Atoi(st.Value())
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, st.Value())
	}
	return port, nil
}

// ToConfiguration flattens the block into a Configuration.
// A statement without arguments maps to true, one argument to a string, several
// arguments to a []string and a nested block to a nested Configuration.
// When a key repeats, the last statement wins.
func (b *Block) ToConfiguration() types.Configuration {
	configuration := make(types.Configuration)
	if b == nil {
		return configuration
	}
	for _, st := range b.Statements {
		if st == nil || st.Key() == "" {
			continue
		}
		if st.Block != nil {
			configuration[st.Key()] = st.Block.ToConfiguration()
			continue
		}
		args := st.Args()
		switch len(args) {
		case 0:
			configuration[st.Key()] = true
		case 1:
			configuration[st.Key()] = args[0]
		default:
			configuration[st.Key()] = append([]string(nil), args...)
		}
	}
	return configuration
}

// String renders the block in nginx-style text, mainly for logging.
func (b *Block) String() string {
	var sb strings.Builder
	b.write(&sb, 0)
	return sb.String()
}

func (b *Block) write(sb *strings.Builder, depth int) {
	if b == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, st := range b.Statements {
		if st == nil {
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(strings.Join(st.Tokens, " "))
		if st.Block != nil {
			sb.WriteString(" {\n")
			st.Block.write(sb, depth+1)
			sb.WriteString(indent)
			sb.WriteString("}\n")
		} else {
			sb.WriteString(";\n")
		}
	}
}
