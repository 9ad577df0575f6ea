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

//路由配置示例：
//  location /static/ StaticHandler {
//    root ./www;
//    index index.html;
//  }
import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/utils/fs"
	"github.com/rulego/httpd/utils/maps"
)

const (
	// StaticHandlerType 组件类型
	StaticHandlerType = "StaticHandler"
	// DefaultIndex 目录默认文件
	DefaultIndex = "index.html"
	// OctetStream is used when the extension has no known content type
	OctetStream = "application/octet-stream"
)

// ErrRootRequired root配置缺失
var ErrRootRequired = errors.New("root is required")

func init() {
	Registry.Add(&StaticHandler{})
}

// StaticHandlerConfiguration 节点配置
type StaticHandlerConfiguration struct {
	// Root 静态文件根目录
	Root string
	// Index is served for requests addressing a directory
	Index string
}

// StaticHandler serves files below Root. The route prefix is stripped from the request
// path before it is resolved, so "location /static/ { root ./www; }" maps
// /static/a.css to ./www/a.css.
type StaticHandler struct {
	Config StaticHandlerConfiguration
	prefix string
	logger types.Logger
}

// Type 组件类型
func (x *StaticHandler) Type() string {
	return StaticHandlerType
}

func (x *StaticHandler) New() types.Handler {
	return &StaticHandler{Config: StaticHandlerConfiguration{Index: DefaultIndex}}
}

// Init 初始化，root必须是已存在的目录
func (x *StaticHandler) Init(config types.Config, prefix string, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &x.Config); err != nil {
		return err
	}
	if x.Config.Root == "" {
		return ErrRootRequired
	}
	if !fs.IsDir(x.Config.Root) {
		return fmt.Errorf("root %s is not a directory", x.Config.Root)
	}
	if x.Config.Index == "" {
		x.Config.Index = DefaultIndex
	}
	x.prefix = prefix
	x.logger = types.NewLogger(config.Logger)
	return nil
}

// HandleRequest 处理请求
func (x *StaticHandler) HandleRequest(req *types.Request) (*types.Response, error) {
	name, err := fs.Resolve(x.Config.Root, x.relativePath(req.PathOnly()))
	if err != nil {
		return types.ErrorResponse(403), nil
	}
	info, err := os.Stat(name)
	if err == nil && info.IsDir() {
		name = filepath.Join(name, x.Config.Index)
		info, err = os.Stat(name)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return types.ErrorResponse(404), nil
		}
		x.logger.Printf("static stat %s error:%v", name, err)
		return types.ErrorResponse(500), nil
	}
	if info.IsDir() {
		return types.ErrorResponse(404), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		x.logger.Printf("static read %s error:%v", name, err)
		return types.ErrorResponse(500), nil
	}
	return types.NewResponse(200).SetBody(contentType(name), data), nil
}

// Destroy 销毁
func (x *StaticHandler) Destroy() {
}

func (x *StaticHandler) relativePath(p string) string {
	if x.prefix != "" && strings.HasPrefix(p, x.prefix) {
		return p[len(x.prefix):]
	}
	return p
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return OctetStream
}
