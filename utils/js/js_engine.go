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
// Package js runs JavaScript functions on pooled goja runtimes.
package js

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/rulego/httpd/api/types"
)

// ErrExecutionTimeout 脚本执行超时
var ErrExecutionTimeout = errors.New("execution timeout")

// closeStateChan 关闭状态通道，返回脚本是否已经超时
func closeStateChan(state chan int) bool {
	// 超过时间也会执行到这里
	// 如果没有超过时间，那么取出的是0，否则取出的是2
	timedOut := true
	if <-state == 0 {
		state <- 1
		timedOut = false
	}
	close(state)
	return timedOut
}

// watch interrupts vm once timeout elapses, unless the returned state channel is closed first.
func watch(vm *goja.Runtime, timeout time.Duration) chan int {
	state := make(chan int, 1)
	state <- 0
	if timeout > 0 {
		time.AfterFunc(timeout, func() {
			if <-state == 0 {
				state <- 2
				vm.Interrupt(ErrExecutionTimeout)
			}
		})
	}
	return state
}

// GojaJsEngine goja js引擎
type GojaJsEngine struct {
	vmPool  sync.Pool
	program *goja.Program
	vars    map[string]interface{}
	config  types.Config
}

// NewGojaJsEngine compiles jsScript and prepares the runtime pool.
// vars are set as globals on every runtime.
func NewGojaJsEngine(config types.Config, jsScript string, vars map[string]interface{}) (*GojaJsEngine, error) {
	program, err := goja.Compile("", jsScript, false)
	if err != nil {
		return nil, fmt.Errorf("js compile error,err:%w", err)
	}
	engine := &GojaJsEngine{program: program, vars: vars, config: config}
	// 预先创建一个运行时，脚本错误在初始化阶段暴露
	vm, err := engine.newRuntime()
	if err != nil {
		return nil, err
	}
	engine.vmPool.Put(vm)
	return engine, nil
}

func (g *GojaJsEngine) newRuntime() (*goja.Runtime, error) {
	vm := goja.New()
	for k, v := range g.vars {
		if err := vm.Set(k, v); err != nil {
			return nil, errors.New("set variable error,err:" + err.Error())
		}
	}
	state := watch(vm, g.config.ScriptMaxExecutionTime)
	_, err := vm.RunProgram(g.program)
	timedOut := closeStateChan(state)
	if err != nil {
		return nil, errors.New("js vm error,err:" + err.Error())
	}
	if timedOut {
		// 超时信号可能在程序结束后才到达，该运行时带有未处理的中断，不再使用
		return nil, fmt.Errorf("js vm error,err:%w", ErrExecutionTimeout)
	}
	return vm, nil
}

func (g *GojaJsEngine) get() (*goja.Runtime, error) {
	if vm, ok := g.vmPool.Get().(*goja.Runtime); ok {
		return vm, nil
	}
	return g.newRuntime()
}

// Execute calls the global function functionName and returns its exported result.
// A runtime interrupted by the timeout is discarded instead of being put back in the pool.
func (g *GojaJsEngine) Execute(functionName string, argumentList ...interface{}) (out interface{}, err error) {
	defer func() {
		if caught := recover(); caught != nil {
			err = fmt.Errorf("%s", caught)
		}
	}()

	vm, err := g.get()
	if err != nil {
		return nil, err
	}
	f, ok := goja.AssertFunction(vm.Get(functionName))
	if !ok {
		g.vmPool.Put(vm)
		return nil, errors.New(functionName + " is not a function")
	}
	var params []goja.Value
	for _, v := range argumentList {
		params = append(params, vm.ToValue(v))
	}

	state := watch(vm, g.config.ScriptMaxExecutionTime)
	res, err := f(goja.Undefined(), params...)
	if !closeStateChan(state) {
		//放回对象池
		g.vmPool.Put(vm)
	}
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, fmt.Errorf("%w: %s", ErrExecutionTimeout, functionName)
		}
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return res.Export(), nil
}

// Stop 池中的运行时由GC回收
func (g *GojaJsEngine) Stop() {
}
