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
//  location /hello ScriptHandler {
//    script "function handle(request) { return {status: 200, headers: {'X-Path': request.path}, body: 'hi'} }";
//  }
import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rulego/httpd/api/types"
	"github.com/rulego/httpd/utils/js"
	"github.com/rulego/httpd/utils/maps"
	"github.com/rulego/httpd/utils/str"
)

const (
	// ScriptHandlerType 组件类型
	ScriptHandlerType = "ScriptHandler"
	// ScriptFuncName JS引擎中执行的函数名称
	ScriptFuncName = "handle"
)

// ErrScriptReturnFormat the script returned a status that is not a number
var ErrScriptReturnFormat = errors.New("script status is not a number")

func init() {
	Registry.Add(&ScriptHandler{})
}

// ScriptHandlerConfiguration 节点配置
type ScriptHandlerConfiguration struct {
	// Script defines function handle(request)
	Script string
}

// ScriptHandler builds the response with a JavaScript function handle(request).
// The request object has the same fields as the expr environment of ExprHandler.
// The function returns either a string, used as a 200 text body, or an object
// {status, headers, body}. A body that is not a string is rendered as JSON.
// Scripts running longer than Config.ScriptMaxExecutionTime are interrupted.
type ScriptHandler struct {
	Config   ScriptHandlerConfiguration
	jsEngine *js.GojaJsEngine
}

// Type 组件类型
func (x *ScriptHandler) Type() string {
	return ScriptHandlerType
}

func (x *ScriptHandler) New() types.Handler {
	return &ScriptHandler{}
}

// Init 初始化
func (x *ScriptHandler) Init(config types.Config, _ string, configuration types.Configuration) error {
	if err := maps.Map2Struct(configuration, &x.Config); err != nil {
		return err
	}
	if x.Config.Script == "" {
		return errors.New("script is required")
	}
	engine, err := js.NewGojaJsEngine(config, x.Config.Script, nil)
	if err != nil {
		return err
	}
	x.jsEngine = engine
	return nil
}

// HandleRequest 处理请求
func (x *ScriptHandler) HandleRequest(req *types.Request) (*types.Response, error) {
	out, err := x.jsEngine.Execute(ScriptFuncName, requestEnv(req))
	if err != nil {
		return nil, err
	}
	result, ok := out.(map[string]interface{})
	if !ok {
		if out == nil {
			return types.NewResponse(200).SetBody("", nil), nil
		}
		return types.NewResponse(200).SetBody(types.TextPlain, []byte(str.ToString(out))), nil
	}

	status := 200
	if v, ok := result["status"]; ok && v != nil {
		if status, err = toStatus(v); err != nil {
			return nil, err
		}
	}
	resp := types.NewResponse(status)
	for k, v := range str.ToStringMapString(result["headers"]) {
		resp.SetHeader(k, v)
	}
	contentType := types.TextPlain
	body := result["body"]
	if _, isString := body.(string); !isString && body != nil {
		contentType = types.ApplicationJson
	}
	if ct, ok := resp.Headers[types.ContentType]; ok {
		contentType = ct
	}
	return resp.SetBody(contentType, []byte(str.ToString(body))), nil
}

// Destroy 销毁
func (x *ScriptHandler) Destroy() {
	if x.jsEngine != nil {
		x.jsEngine.Stop()
	}
}

func toStatus(v interface{}) (int, error) {
	switch s := v.(type) {
	case int64:
		return int(s), nil
	case float64:
		return int(s), nil
	case int:
		return s, nil
	case string:
		if code, err := strconv.Atoi(s); err == nil {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrScriptReturnFormat, v)
}
