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

package aspect

import (
	"github.com/rulego/weaver/api/types"
)

var (
	// Compile-time check Debug implements types.BeforeAspect.
	_ types.BeforeAspect = (*Debug)(nil)
	// Compile-time check Debug implements types.AfterReturningAspect.
	_ types.AfterReturningAspect = (*Debug)(nil)
	// Compile-time check Debug implements types.AfterThrowingAspect.
	_ types.AfterThrowingAspect = (*Debug)(nil)
)

// Debug is a debug logging aspect. It logs the arguments of every intercepted call
// on the way in, and the result or the error on the way out.
//
// Debug 是一个调试日志切面，记录被拦截方法的入参，以及返回值或者错误。
//
// Usage:
// 使用方法：
//
//	// Apply to every method of every target
//	// 应用到所有目标的所有方法
//	w, _ := engine.New(engine.WithAspects(&aspect.Debug{}))
//
//	// Apply to the service package only
//	// 只应用到 service 包
//	w, _ := engine.New(engine.WithAspects(&aspect.Debug{Expression: "within(com.example.service..*)"}))
type Debug struct {
	// Expression is the pointcut expression, all methods if empty
	// Expression 切入点表达式，为空则拦截所有方法
	Expression string
	// Logger receives the debug lines, types.DefaultLogger() if nil
	// Logger 日志记录器，为空则使用 types.DefaultLogger()
	Logger types.Logger
}

// Order returns the execution order of this aspect. Higher values execute later.
// Debug aspect executes with order 900, so its before advice sees the call after the other aspects.
//
// Order 返回此切面的执行顺序。值越高，执行越晚。
func (aspect *Debug) Order() int {
	return 900
}

// New creates a new instance of the Debug aspect.
//
// New 创建 Debug 切面的新实例。
func (aspect *Debug) New() types.Aspect {
	logger := aspect.Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}
	return &Debug{Expression: aspect.Expression, Logger: logger}
}

// Type returns the unique identifier for this aspect type.
//
// Type 返回此切面类型的唯一标识符。
func (aspect *Debug) Type() string {
	return "debug"
}

// PointCut returns the pointcut expression of the aspect.
//
// PointCut 返回切入点表达式。
func (aspect *Debug) PointCut() string {
	return aspect.Expression
}

// Before logs the incoming call.
//
// Before 记录方法调用入参。
func (aspect *Debug) Before(jp types.JoinPoint) error {
	aspect.logger().Printf("[In] id=%s %s args=%v", jp.Descriptor().Id, jp.Signature(), jp.Arguments())
	return nil
}

// AfterReturning logs the returned value.
//
// AfterReturning 记录返回值。
func (aspect *Debug) AfterReturning(jp types.JoinPoint, result any) error {
	aspect.logger().Printf("[Out] id=%s %s result=%v", jp.Descriptor().Id, jp.Signature(), result)
	return nil
}

// AfterThrowing logs the error of the call.
//
// AfterThrowing 记录方法错误。
func (aspect *Debug) AfterThrowing(jp types.JoinPoint, err error) error {
	aspect.logger().Printf("[Out] id=%s %s err=%v", jp.Descriptor().Id, jp.Signature(), err)
	return nil
}

func (aspect *Debug) logger() types.Logger {
	if aspect.Logger == nil {
		return types.DefaultLogger()
	}
	return aspect.Logger
}
