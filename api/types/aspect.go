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

package types

// The interfaces below provide the AOP (Aspect Oriented Programming) mechanism of weaver.
//
//   - An aspect adds behavior around the methods of a registered target without modifying the target.
//   - Common behaviors (logging, metrics, rate limiting, fallback) are kept apart from the business logic.
//
// 以下接口提供 weaver 的 AOP(面向切面编程，Aspect Oriented Programming)机制。
//
//   - 切面可以在不修改目标对象的情况下，在目标方法周围添加额外的行为。
//   - 它允许把一些公共的行为（例如：日志、指标、限流、降级）从业务逻辑中分离出来。

// Aspect is the base interface for advice
// Aspect 增强点接口的基类
type Aspect interface {
	// Order returns the execution order, the smaller the value, the higher the priority
	// Order 返回执行顺序，值越小，优先级越高
	Order() int
	// New creates a new instance of the aspect for each weaver
	// New 为每个 weaver 创建切面的新实例
	New() Aspect
}

// MethodAspect is the base interface for method advice
// MethodAspect 方法增强点接口的基类
type MethodAspect interface {
	Aspect
	// PointCut returns the pointcut expression that selects the intercepted methods.
	// For example: execution(* com.example.service.*.*(..))
	// PointCut 返回切入点表达式，用于选择需要拦截的方法
	PointCut() string
}

// BeforeAspect is the interface for method pre-execution advice
// BeforeAspect 目标方法执行之前的增强点接口
type BeforeAspect interface {
	MethodAspect
	// Before is executed before the target method. A returned error becomes the failure of the invocation
	// and the target method is not called.
	// Before 目标方法执行之前的增强点。返回错误则目标方法不会被调用。
	Before(jp JoinPoint) error
}

// AfterReturningAspect is the interface for advice executed after the target method returns normally
// AfterReturningAspect 目标方法正常返回之后的增强点接口
type AfterReturningAspect interface {
	MethodAspect
	// AfterReturning observes the returned value, it cannot replace it.
	// AfterReturning 可以观察返回值，但不能修改返回值
	AfterReturning(jp JoinPoint, result any) error
}

// AfterThrowingAspect is the interface for advice executed after the target method fails
// AfterThrowingAspect 目标方法返回错误之后的增强点接口
type AfterThrowingAspect interface {
	MethodAspect
	// AfterThrowing observes the error, the error propagates unchanged.
	// AfterThrowing 可以观察错误，错误会继续向上传递
	AfterThrowing(jp JoinPoint, err error) error
}

// AfterAspect is the interface for advice executed after the target method completes either way
// AfterAspect 目标方法执行结束（无论成功或失败）之后的增强点接口
type AfterAspect interface {
	MethodAspect
	After(jp JoinPoint) error
}

// AroundAspect is the interface for method around-execution advice
// AroundAspect 目标方法执行环绕增强点接口
type AroundAspect interface {
	MethodAspect
	// Around surrounds the target method. It decides whether to call pjp.Proceed, may call it several
	// times, may transform the result, swallow the error or return a substitute value.
	// Around 环绕目标方法。由切面决定是否调用 pjp.Proceed，可以多次调用，可以修改返回值、吞掉错误或者返回替代值。
	Around(pjp ProceedingJoinPoint) (any, error)
}

// KindSelector narrows the advice kinds registered for an aspect that implements more kinds than it uses.
// KindSelector 限定切面需要注册的增强点类型
type KindSelector interface {
	Kinds() []AdviceKind
}

// Initializer is implemented by aspects that need initialization after their configuration is set.
// Initializer 配置设置之后需要初始化的切面
type Initializer interface {
	Init() error
}

// TypedAspect is an aspect that can be created by type name from the aspect registry.
// TypedAspect 可以通过类型名称从切面注册器创建的切面
type TypedAspect interface {
	Aspect
	Type() string
}
