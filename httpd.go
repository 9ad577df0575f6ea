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
// Package httpd provides a small HTTP/1.1 server whose routes are declared in an
// nginx-style configuration tree.
//
// # Usage
//
// The configuration tree names the listening port and the routing rules. Rules are
// evaluated in document order and the first matching rule serves the request:
//
//	listen 8080;
//	location /static/ StaticHandler { root ./www; }
//	location = /status StatusHandler { format json; }
//	location ~ ^/api/(\w+)$ EchoHandler { methods GET POST; }
//	location @ /users/:id ExprHandler { expr "'user ' + named.id"; }
//	location echo { root /echo; }
//	default NotFoundHandler { body "nothing here"; }
//
// Example:
//
//	tree, err := config.Load("routes.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv, err := httpd.NewServer(tree, types.WithWorkers(4))
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(srv.ListenAndServe())
//
// Handler kinds are resolved by name through Registry. Custom kinds implement
// types.Handler and are registered before NewServer is called:
//
//	httpd.Registry.Register(&MyHandler{})
package httpd

import (
	"net"
	"strconv"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/config"
	"github.com/rulego/httpd/router"
	"github.com/rulego/httpd/server"
)

// NewConfig creates a server configuration with the default handler registry.
func NewConfig(opts ...types.Option) types.Config {
	c := types.NewConfig(opts...)
	if c.Registry == nil {
		c.Registry = Registry
	}
	return c
}

// NewServer builds the routing table from tree and returns a server bound to
// Config.Host and the port of the tree's listen statement. The server is not started.
// A configuration error in the tree aborts construction.
func NewServer(tree *config.Block, opts ...types.Option) (*server.Server, error) {
	c := NewConfig(opts...)
	port, err := config.ListenPort(tree)
	if err != nil {
		return nil, err
	}
	table, err := router.Build(c, tree)
	if err != nil {
		return nil, err
	}
	c.Logger = types.NewLogger(c.Logger)
	for _, r := range table.RouteInfos() {
		c.Logger.Printf("route %s %s -> %s", r.Kind, r.Pattern, r.HandlerType)
	}
	return server.New(c, net.JoinHostPort(c.Host, strconv.Itoa(port)), table), nil
}
