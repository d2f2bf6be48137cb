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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rulego/weaver/api/types"
)

// FallbackErr is returned when a method call is skipped due to circuit breaker activation.
// This error indicates that the method has been temporarily disabled due to repeated failures.
// FallbackErr 当由于熔断器激活而跳过方法调用时返回。
// 此错误表示方法由于重复失败已被临时禁用。
var FallbackErr = errors.New("skip fallback error")

var (
	// Compile-time check SkipFallbackAspect implements types.AroundAspect.
	_ types.AroundAspect = (*SkipFallbackAspect)(nil)
)

// SkipFallbackAspect implements a circuit breaker pattern for method failure handling.
// It skips the target method when its error count reaches the threshold.
// SkipFallbackAspect 实现方法故障处理的熔断器模式。
// 当错误计数达到阈值时，跳过目标方法的调用。
//
// Circuit Breaker Logic:
// 熔断器逻辑：
//  1. Track consecutive error count per method signature  按方法签名跟踪连续错误计数
//  2. Skip execution when error count >= ErrorCountLimit  错误计数 >= ErrorCountLimit 时跳过执行
//  3. Automatically recover after LimitDuration expires  LimitDuration 过期后自动恢复
//  4. Reset error count when a call succeeds  调用成功时重置错误计数
//
// Usage:
// 使用方法：
//
//	fallback := &SkipFallbackAspect{
//		ErrorCountLimit: 5,
//		LimitDuration:   time.Minute * 2,
//	}
//	w, _ := engine.New(engine.WithAspects(fallback))
type SkipFallbackAspect struct {
	// ErrorCountLimit is the maximum number of consecutive errors before
	// triggering circuit breaker. Default is 3 if not specified.
	//
	// ErrorCountLimit 是触发熔断器之前的最大连续错误数。
	// 如果未指定，默认为 3。
	ErrorCountLimit int64

	// LimitDuration is the time period for which the circuit breaker remains
	// active. After this duration, the method will be retried. Default is 10 seconds.
	//
	// LimitDuration 是熔断器保持活跃的时间周期。
	// 在此持续时间后，方法将重试。默认为 10 秒。
	LimitDuration time.Duration

	// Expression is the pointcut expression, all methods if empty.
	// Expression 切入点表达式，为空则拦截所有方法
	Expression string

	// Fallback is called instead of the target while the circuit breaker is active.
	// If nil, the call fails with FallbackErr.
	//
	// Fallback 熔断期间代替目标方法执行，为空则返回 FallbackErr
	Fallback func(jp types.JoinPoint) (any, error)

	// methodErrorCache stores error information for each method
	// Key: MethodSignature.Key(), Value: *MethodError
	//
	// methodErrorCache 存储每个方法的错误信息
	methodErrorCache sync.Map
}

// Order returns the execution order of this aspect. Lower values execute earlier.
// Order 返回此切面的执行顺序。值越低，执行越早。
func (aspect *SkipFallbackAspect) Order() int {
	return 10
}

// New creates a new instance of the circuit breaker aspect with validated configuration.
// It applies default values if ErrorCountLimit or LimitDuration are not specified.
// New 创建熔断器切面新实例。如果未指定 ErrorCountLimit 或 LimitDuration，使用默认值。
//
// Default Values:
// 默认值：
//   - ErrorCountLimit: 3 consecutive errors  连续 3 次错误
//   - LimitDuration: 10 seconds  10 秒
func (aspect *SkipFallbackAspect) New() types.Aspect {
	var errorCountLimit = aspect.ErrorCountLimit
	var limitDuration = aspect.LimitDuration
	if errorCountLimit == 0 {
		errorCountLimit = 3
	}
	if limitDuration == 0 {
		limitDuration = time.Second * 10
	}
	return &SkipFallbackAspect{
		ErrorCountLimit: errorCountLimit,
		LimitDuration:   limitDuration,
		Expression:      aspect.Expression,
		Fallback:        aspect.Fallback,
	}
}

// Type returns the unique identifier for this aspect type.
// Type 返回此切面类型的唯一标识符。
func (aspect *SkipFallbackAspect) Type() string {
	return "fallback"
}

// PointCut returns the pointcut expression of the aspect.
// PointCut 返回切入点表达式。
func (aspect *SkipFallbackAspect) PointCut() string {
	return aspect.Expression
}

// Around 判断是否执行降级逻辑，并记录错误次数
func (aspect *SkipFallbackAspect) Around(pjp types.ProceedingJoinPoint) (any, error) {
	key := pjp.Signature().Key()
	if methodError, ok := aspect.getMethodError(key); ok &&
		atomic.LoadInt64(&methodError.errorCount) >= aspect.ErrorCountLimit {
		if atomic.LoadInt64(&methodError.lastErrorTime)+aspect.LimitDuration.Milliseconds() < time.Now().UnixMilli() {
			// 超过时间，清除错误记录
			aspect.methodErrorCache.Delete(key)
		} else {
			// 出错次数达到阈值，执行降级
			if aspect.Fallback != nil {
				return aspect.Fallback(pjp)
			}
			return nil, FallbackErr
		}
	}
	result, err := pjp.Proceed()
	if err != nil {
		aspect.recordError(key)
	} else {
		aspect.methodErrorCache.Delete(key)
	}
	return result, err
}

// Reset 清除方法的错误记录，key 为 types.MethodSignature.Key()
func (aspect *SkipFallbackAspect) Reset(key string) {
	aspect.methodErrorCache.Delete(key)
}

// ErrorCount 返回方法当前的连续错误次数
func (aspect *SkipFallbackAspect) ErrorCount(key string) int64 {
	if methodError, ok := aspect.getMethodError(key); ok {
		return atomic.LoadInt64(&methodError.errorCount)
	}
	return 0
}

func (aspect *SkipFallbackAspect) recordError(key string) {
	now := time.Now().UnixMilli()
	value, loaded := aspect.methodErrorCache.LoadOrStore(key, &MethodError{errorCount: 1, lastErrorTime: now})
	if loaded {
		methodError := value.(*MethodError)
		atomic.AddInt64(&methodError.errorCount, 1)
		atomic.StoreInt64(&methodError.lastErrorTime, now)
	}
}

func (aspect *SkipFallbackAspect) getMethodError(key string) (*MethodError, bool) {
	if cache, ok := aspect.methodErrorCache.Load(key); ok {
		if methodError, ok := cache.(*MethodError); ok {
			return methodError, true
		}
	}
	return nil, false
}

// MethodError represents the error tracking information for a specific method.
// It maintains both the count of consecutive errors and the timestamp of
// the last error occurrence for circuit breaker decision making.
//
// MethodError 表示特定方法的错误跟踪信息。
// 它维护连续错误的计数和最后一次错误发生的时间戳，用于熔断器决策。
type MethodError struct {
	// errorCount tracks the number of consecutive errors for this method.
	// errorCount 跟踪此方法的连续错误数量。
	errorCount int64

	// lastErrorTime stores the timestamp (in milliseconds) of the most recent error.
	// lastErrorTime 存储最近错误的时间戳（毫秒）。
	lastErrorTime int64
}
