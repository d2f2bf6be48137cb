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

package aspect

import (
	"sync/atomic"

	"github.com/rulego/weaver/api/types"
)

// ConcurrencyLimiterAspect implements a concurrency limiter using atomic operations
// to restrict the number of concurrent invocations of the intercepted methods.
//
// ConcurrencyLimiterAspect 使用原子操作实现并发限制器，限制被拦截方法的并发调用数量。
//
// Features:
// 功能特性：
//   - Atomic operations for thread-safe counting  原子操作确保线程安全计数
//   - Compare-and-swap (CAS) for consistent state  比较并交换（CAS）确保状态一致性
//   - Configurable maximum concurrent executions  可配置的最大并发执行数量
//   - Counter released when the call returns  调用返回时释放计数
//   - Returns ErrConcurrencyLimitReached when limit exceeded  超过限制时返回 ErrConcurrencyLimitReached
//
// Usage:
// 使用方法：
//
//	// Create aspect with maximum 100 concurrent executions
//	// 创建最大 100 个并发执行的切面
//	limiter := NewConcurrencyLimiterAspect(100)
//	w, _ := engine.New(engine.WithAspects(limiter))
type ConcurrencyLimiterAspect struct {
	Max          int64  // Maximum number of concurrent executions  最大并发执行数量
	Expression   string // Pointcut expression, all methods if empty  切入点表达式
	currentCount int64  // Current number of concurrent executions  当前并发执行数量
}

var _ types.AroundAspect = (*ConcurrencyLimiterAspect)(nil)

// NewConcurrencyLimiterAspect creates a new concurrency limiter aspect with the specified
// maximum number of concurrent executions. This factory function initializes the aspect
// with proper configuration.
//
// NewConcurrencyLimiterAspect 创建具有指定最大并发执行数量的新并发限制切面。
// 此工厂函数使用适当的配置初始化切面。
//
// Parameters:
// 参数：
//   - max: Maximum number of concurrent invocations allowed
//     max：允许的最大并发调用数量
//
// Returns:
// 返回：
//   - *ConcurrencyLimiterAspect: Configured concurrency limiter aspect
//     *ConcurrencyLimiterAspect：配置好的并发限制切面
func NewConcurrencyLimiterAspect(max int) *ConcurrencyLimiterAspect {
	return &ConcurrencyLimiterAspect{
		Max: int64(max),
	}
}

// Order returns the execution priority of this aspect. Lower values execute earlier.
// This aspect has order 10, making it one of the first aspects to execute.
//
// Order 返回此切面的执行优先级。值越低，执行越早。
// 此切面的顺序为 10，使其成为最先执行的切面之一。
func (a *ConcurrencyLimiterAspect) Order() int {
	return 10
}

// New creates a new instance of the aspect for each weaver.
// Each instance maintains its own concurrency counter starting from zero.
//
// New 为每个织入器创建切面的新实例。
// 每个实例维护自己的并发计数器，从零开始。
func (a *ConcurrencyLimiterAspect) New() types.Aspect {
	return &ConcurrencyLimiterAspect{
		Max:          a.Max,
		Expression:   a.Expression,
		currentCount: 0,
	}
}

// Type returns the unique identifier for this aspect type.
//
// Type 返回此切面类型的唯一标识符。
func (a *ConcurrencyLimiterAspect) Type() string {
	return "limiter"
}

// PointCut returns the pointcut expression. All methods share one counter.
//
// PointCut 返回切入点表达式，所有匹配的方法共享一个计数器。
func (a *ConcurrencyLimiterAspect) PointCut() string {
	return a.Expression
}

// Around acquires a slot before proceeding and releases it when the call returns.
// It uses compare-and-swap so that the limit is never exceeded.
//
// Around 在继续执行前获取一个并发槽位，调用返回后释放。
// 使用比较并交换确保不会超过限制。
//
// Algorithm:
// 算法：
//  1. Load current count atomically  原子加载当前计数
//  2. Check if limit would be exceeded  检查是否会超过限制
//  3. Use CAS to increment if within limit  如果在限制内则使用 CAS 增加
//  4. Retry if CAS fails due to concurrent modification  如果由于并发修改导致 CAS 失败则重试
//
// Returns ErrConcurrencyLimitReached without calling the target when the limit is reached.
// 超过限制时不调用目标方法，返回 ErrConcurrencyLimitReached。
func (a *ConcurrencyLimiterAspect) Around(pjp types.ProceedingJoinPoint) (any, error) {
	// 使用原子操作确保检查和增加操作的原子性
	for {
		current := atomic.LoadInt64(&a.currentCount)
		if current >= a.Max {
			return nil, types.ErrConcurrencyLimitReached
		}
		// 尝试原子地增加计数器，如果成功则退出循环
		if atomic.CompareAndSwapInt64(&a.currentCount, current, current+1) {
			break
		}
		// 如果CAS失败，说明有其他goroutine修改了计数器，重试
	}
	defer a.decrementCurrent()
	return pjp.Proceed()
}

// Current returns the number of invocations holding a slot.
//
// Current 返回当前占用并发槽位的调用数量。
func (a *ConcurrencyLimiterAspect) Current() int64 {
	return atomic.LoadInt64(&a.currentCount)
}

// decrementCurrent atomically decrements the current execution count.
//
// decrementCurrent 原子地减少当前执行计数。
func (a *ConcurrencyLimiterAspect) decrementCurrent() {
	atomic.AddInt64(&a.currentCount, -1)
}
