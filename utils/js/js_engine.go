/*
 * Copyright 2023 The RuleGo Authors.
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

// Package js provides JavaScript execution for script aspects.
//
// The script is compiled once with goja. Every pooled VM runs the compiled program, so the
// functions it declares can then be called by name with Execute. A call that runs longer
// than Config.MaxExecutionTime is interrupted.
package js

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/rulego/weaver/api/types"
)

// ErrNotFunction is returned when the called name is not a function of the script.
var ErrNotFunction = errors.New("is not a function")

// Config configures a GojaJsEngine.
type Config struct {
	// Logger receives VM set-up errors
	Logger types.Logger
	// MaxExecutionTime interrupts a call that runs longer, zero disables the timeout
	MaxExecutionTime time.Duration
}

// GojaJsEngine goja js engine
type GojaJsEngine struct {
	vmPool   sync.Pool
	config   Config
	jsScript *goja.Program
}

// NewGojaJsEngine Create a new instance of the JavaScript engine. vars are set as globals of every VM.
func NewGojaJsEngine(config Config, jsScript string, vars map[string]interface{}) (*GojaJsEngine, error) {
	program, err := goja.Compile("", jsScript, true)
	if err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = types.DefaultLogger()
	}
	jsEngine := &GojaJsEngine{
		config:   config,
		jsScript: program,
	}
	// run the script once so that top-level errors surface at creation
	vm, err := jsEngine.NewVm(vars)
	if err != nil {
		return nil, err
	}
	jsEngine.vmPool = sync.Pool{
		New: func() interface{} {
			vm, err := jsEngine.NewVm(vars)
			if err != nil {
				config.Logger.Printf("js vm error: %s", err.Error())
			}
			return vm
		},
	}
	jsEngine.vmPool.Put(vm)
	return jsEngine, nil
}

// NewVm new a js VM
func (g *GojaJsEngine) NewVm(vars map[string]interface{}) (*goja.Runtime, error) {
	vm := goja.New()
	for k, v := range vars {
		if err := vm.Set(k, v); err != nil {
			g.config.Logger.Printf("set var %s error: %s", k, err.Error())
		}
	}
	timer := g.startTimeout(vm)
	_, err := vm.RunProgram(g.jsScript)
	g.stopTimeout(vm, timer)
	return vm, err
}

// HasFunction reports whether the script declares a global function with the given name.
func (g *GojaJsEngine) HasFunction(functionName string) bool {
	vm := g.vmPool.Get().(*goja.Runtime)
	defer g.vmPool.Put(vm)
	_, ok := goja.AssertFunction(vm.Get(functionName))
	return ok
}

// Execute Execute JavaScript function and export its result.
func (g *GojaJsEngine) Execute(functionName string, argumentList ...interface{}) (out interface{}, err error) {
	defer func() {
		if caught := recover(); caught != nil {
			err = fmt.Errorf("%s", caught)
		}
	}()

	vm := g.vmPool.Get().(*goja.Runtime)
	defer g.vmPool.Put(vm)

	timer := g.startTimeout(vm)
	defer g.stopTimeout(vm, timer)

	f, ok := goja.AssertFunction(vm.Get(functionName))
	if !ok {
		return nil, fmt.Errorf("%s %w", functionName, ErrNotFunction)
	}

	var params []goja.Value
	if len(argumentList) > 0 {
		params = make([]goja.Value, len(argumentList))
		for i, v := range argumentList {
			params[i] = vm.ToValue(v)
		}
	}

	res, err := f(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}

func (g *GojaJsEngine) Stop() {
}

// startTimeout starts a timeout for JS script execution using time.AfterFunc
// Returns nil if timeout is not configured
func (g *GojaJsEngine) startTimeout(vm *goja.Runtime) *time.Timer {
	if g.config.MaxExecutionTime <= 0 {
		return nil
	}
	return time.AfterFunc(g.config.MaxExecutionTime, func() {
		vm.Interrupt("execution timeout")
	})
}

// stopTimeout stops the timeout timer and clears a pending interrupt
func (g *GojaJsEngine) stopTimeout(vm *goja.Runtime, timer *time.Timer) {
	if timer != nil {
		timer.Stop()
		vm.ClearInterrupt()
	}
}
