/*
 * Copyright 2025 The RuleGo Authors.
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

package aspect

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/utils/js"
)

// ErrEmptyScript is returned by Init when the script aspect has no script.
var ErrEmptyScript = errors.New("script aspect: empty script")

// Names of the script functions bound to the advice kinds.
const (
	ScriptBefore         = "before"
	ScriptAfterReturning = "afterReturning"
	ScriptAfterThrowing  = "afterThrowing"
	ScriptAfter          = "after"
	ScriptAround         = "around"
)

var (
	_ types.BeforeAspect         = (*ScriptAspect)(nil)
	_ types.AfterReturningAspect = (*ScriptAspect)(nil)
	_ types.AfterThrowingAspect  = (*ScriptAspect)(nil)
	_ types.AfterAspect          = (*ScriptAspect)(nil)
	_ types.AroundAspect         = (*ScriptAspect)(nil)
	_ types.KindSelector         = (*ScriptAspect)(nil)
	_ types.Initializer          = (*ScriptAspect)(nil)
)

// ScriptAspect runs advice handlers written in JavaScript. Each function the script declares
// among before, afterReturning, afterThrowing, after and around becomes an advice of that kind.
// A handler fails by throwing.
//
// ScriptAspect 使用 JavaScript 编写增强逻辑，脚本中定义的 before、afterReturning、afterThrowing、
// after、around 函数分别注册为对应类型的增强点，函数抛出异常表示增强失败。
//
// Every handler receives a join point object:
//
//	{id, method, declaringType, args}
//
// The around handler also gets jp.proceed(), which runs the rest of the chain and returns
// its result or throws its error.
//
// Example:
//
//	function before(jp) {
//	    if (jp.args[0] === "") {
//	        throw new Error("empty name");
//	    }
//	}
//	function around(jp) {
//	    var r = jp.proceed();
//	    return r + 1;
//	}
type ScriptAspect struct {
	// Script is the JavaScript source
	Script string
	// Expression is the pointcut expression, all methods if empty
	Expression string
	// Priority is the order of the aspect
	Priority int `json:"order" mapstructure:"order"`
	// MaxExecutionTime interrupts a handler that runs longer, zero disables the timeout
	MaxExecutionTime time.Duration
	// Logger backs the log function of the script
	Logger types.Logger

	jsEngine *js.GojaJsEngine
	kinds    []types.AdviceKind
}

func (a *ScriptAspect) Order() int {
	return a.Priority
}

func (a *ScriptAspect) Type() string {
	return "script"
}

func (a *ScriptAspect) New() types.Aspect {
	return &ScriptAspect{
		Script:           a.Script,
		Expression:       a.Expression,
		Priority:         a.Priority,
		MaxExecutionTime: a.MaxExecutionTime,
		Logger:           a.Logger,
	}
}

func (a *ScriptAspect) PointCut() string {
	return a.Expression
}

// Init compiles the script and finds the advice functions it declares.
func (a *ScriptAspect) Init() error {
	if strings.TrimSpace(a.Script) == "" {
		return ErrEmptyScript
	}
	logger := a.Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}
	vars := map[string]interface{}{
		"log": func(format string, args ...interface{}) {
			logger.Printf(format, args...)
		},
	}
	jsEngine, err := js.NewGojaJsEngine(js.Config{Logger: logger, MaxExecutionTime: a.MaxExecutionTime}, a.Script, vars)
	if err != nil {
		return fmt.Errorf("script aspect: %w", err)
	}
	a.jsEngine = jsEngine
	a.kinds = nil
	for _, kind := range types.AdviceKinds {
		if jsEngine.HasFunction(scriptFunction(kind)) {
			a.kinds = append(a.kinds, kind)
		}
	}
	return nil
}

// Kinds returns the advice kinds the script declares a function for.
func (a *ScriptAspect) Kinds() []types.AdviceKind {
	return a.kinds
}

func (a *ScriptAspect) Before(jp types.JoinPoint) error {
	_, err := a.jsEngine.Execute(ScriptBefore, joinPointObject(jp))
	return err
}

func (a *ScriptAspect) AfterReturning(jp types.JoinPoint, result any) error {
	_, err := a.jsEngine.Execute(ScriptAfterReturning, joinPointObject(jp), result)
	return err
}

func (a *ScriptAspect) AfterThrowing(jp types.JoinPoint, err error) error {
	_, execErr := a.jsEngine.Execute(ScriptAfterThrowing, joinPointObject(jp), err.Error())
	return execErr
}

func (a *ScriptAspect) After(jp types.JoinPoint) error {
	_, err := a.jsEngine.Execute(ScriptAfter, joinPointObject(jp))
	return err
}

// Around calls the around function of the script. proceed raises the error of the inner
// chain as a Go error object; when the script lets it escape, that error is returned unchanged.
func (a *ScriptAspect) Around(pjp types.ProceedingJoinPoint) (any, error) {
	obj := joinPointObject(pjp)
	obj["proceed"] = func() (interface{}, error) {
		return pjp.Proceed()
	}
	result, err := a.jsEngine.Execute(ScriptAround, obj)
	if err != nil {
		var exception *goja.Exception
		if errors.As(err, &exception) {
			if cause := exception.Unwrap(); cause != nil {
				return nil, cause
			}
		}
		return nil, err
	}
	return result, nil
}

func scriptFunction(kind types.AdviceKind) string {
	switch kind {
	case types.Before:
		return ScriptBefore
	case types.AfterReturning:
		return ScriptAfterReturning
	case types.AfterThrowing:
		return ScriptAfterThrowing
	case types.After:
		return ScriptAfter
	default:
		return ScriptAround
	}
}

func joinPointObject(jp types.JoinPoint) map[string]interface{} {
	return map[string]interface{}{
		"id":            jp.Descriptor().Id,
		"method":        jp.MethodName(),
		"declaringType": jp.DeclaringTypeName(),
		"args":          jp.Arguments(),
	}
}
