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

// Package aspect provides built-in aspects for the weaver.
// Each aspect bundles advices of one cross-cutting concern, bound to a pointcut expression
// that defaults to every method of every target.
//
// Package aspect 提供织入器内置的切面。每个切面封装一个横切关注点的增强逻辑，
// 绑定到一个切入点表达式，默认拦截所有目标的所有方法。
//
// Available Built-in Aspects:
// 可用的内置切面：
//
//   - Debug: Logs the arguments and the result or error of intercepted calls
//     Debug：记录被拦截方法的入参以及返回值或者错误
//
//   - ConcurrencyLimiterAspect: Limits concurrent invocations
//     ConcurrencyLimiterAspect：限制并发调用的切面
//
//   - MetricsAspect: Collects invocation metrics
//     MetricsAspect：收集调用指标的切面
//
//   - SkipFallbackAspect: Implements circuit breaker pattern for method failure handling
//     SkipFallbackAspect：实现方法故障处理的熔断器模式切面
//
//   - ScriptAspect: Advice handlers written in JavaScript
//     ScriptAspect：使用 JavaScript 编写增强逻辑的切面
//
// Aspect Execution Order:
// 切面执行顺序：
//
// Advices are composed according to the Order() of their aspect, lower first:
// 增强点根据切面的 Order() 组合，值越小越先执行：
//  1. ConcurrencyLimiterAspect (order: 10)
//  2. SkipFallbackAspect (order: 10)
//  3. MetricsAspect (order: 20)
//  4. Debug (order: 900)
//
// Usage Examples:
// 使用示例：
//
//	w, err := engine.New(engine.WithAspects(
//		&Debug{},
//		NewConcurrencyLimiterAspect(100),
//		NewMetricsAspect(nil),
//		&SkipFallbackAspect{ErrorCountLimit: 5, LimitDuration: time.Minute},
//	))
//
//	// Create an aspect by type with a configuration map
//	// 通过类型和配置创建切面
//	limiter, err := Registry.New("limiter", map[string]interface{}{"max": 10})
//
// Custom Aspect Development:
// 自定义切面开发：
//
// To create custom aspects, implement one or more advice interfaces of the types package:
// 要创建自定义切面，请实现 types 包中的一个或多个增强点接口：
//
//	type CustomAspect struct{}
//
//	func (a *CustomAspect) Order() int { return 100 }
//	func (a *CustomAspect) New() types.Aspect { return &CustomAspect{} }
//	func (a *CustomAspect) Type() string { return "custom" }
//	func (a *CustomAspect) PointCut() string { return "execution(* com.example..*.*(..))" }
//	func (a *CustomAspect) Before(jp types.JoinPoint) error { return nil }
package aspect
