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
//  location @ /users/:id ExprHandler {
//    expr "'user ' + named.id";
//    status 200;
//    content_type text/plain;
//  }
import (
	"errors"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/utils/maps"
	"github.com/rulego/httpd/utils/str"
)

// ExprHandlerType 组件类型
const ExprHandlerType = "ExprHandler"

func init() {
	Registry.Add(&ExprHandler{})
}

// ExprHandlerConfiguration 节点配置
type ExprHandlerConfiguration struct {
	// Expr 表达式，结果作为响应体
	Expr string
	// Status 响应状态码，默认200
	Status int
	// ContentType 响应内容类型，默认text/plain
	ContentType string `mapstructure:"content_type"`
}

// ExprHandler evaluates an expr expression per request and answers with its result.
// 通过`method`、`path`、`query`、`version`变量访问请求行
// 通过`headers`变量访问请求头，例如 `headers.Host`
// 通过`body`变量访问请求体字符串
// 通过`params`变量访问路由捕获组，通过`named`变量访问命名参数，例如 `named.id`
type ExprHandler struct {
	Config  ExprHandlerConfiguration
	program *vm.Program
}

// Type 组件类型
func (x *ExprHandler) Type() string {
	return ExprHandlerType
}

func (x *ExprHandler) New() types.Handler {
	return &ExprHandler{Config: ExprHandlerConfiguration{Status: 200, ContentType: types.TextPlain}}
}

// Init 初始化
func (x *ExprHandler) Init(_ types.Config, _ string, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &x.Config); err != nil {
		return err
	}
	if x.Config.Expr == "" {
		return errors.New("expr is required")
	}
	program, err := expr.Compile(x.Config.Expr, expr.AllowUndefinedVariables())
	if err != nil {
		return err
	}
	x.program = program
	return nil
}

// HandleRequest 处理请求
func (x *ExprHandler) HandleRequest(req *types.Request) (*types.Response, error) {
	out, err := vm.Run(x.program, requestEnv(req))
	if err != nil {
		return nil, err
	}
	return types.NewResponse(x.Config.Status).SetBody(x.Config.ContentType, []byte(str.ToString(out))), nil
}

// Destroy 销毁
func (x *ExprHandler) Destroy() {
}

// requestEnv exposes a request to expressions and scripts.
func requestEnv(req *types.Request) map[string]interface{} {
	headers := req.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	named := req.NamedParams
	if named == nil {
		named = map[string]string{}
	}
	params := req.Params
	if params == nil {
		params = []string{}
	}
	return map[string]interface{}{
		"method":     req.Method,
		"path":       req.PathOnly(),
		"query":      req.Query(),
		"version":    req.Version,
		"headers":    headers,
		"body":       string(req.Body),
		"params":     params,
		"named":      named,
		"remoteAddr": req.RemoteAddr,
	}
}
