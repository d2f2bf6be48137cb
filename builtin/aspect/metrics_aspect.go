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
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/api/types/metrics"
)

// MetricsAspect 统计被拦截方法的调用指标
// MetricsAspect counts running, total, successful and failed invocations.
type MetricsAspect struct {
	Expression string
	metrics    *metrics.InvocationMetrics
}

var _ types.AroundAspect = (*MetricsAspect)(nil)

func NewMetricsAspect(m *metrics.InvocationMetrics) *MetricsAspect {
	if m == nil {
		m = metrics.NewInvocationMetrics()
	}
	return &MetricsAspect{
		metrics: m,
	}
}

func (a *MetricsAspect) Order() int {
	return 20
}

func (a *MetricsAspect) Type() string {
	return "metrics"
}

func (a *MetricsAspect) New() types.Aspect {
	if a.metrics == nil {
		a.metrics = metrics.NewInvocationMetrics()
	}
	a.metrics.Reset()
	return &MetricsAspect{
		Expression: a.Expression,
		metrics:    a.metrics,
	}
}

func (a *MetricsAspect) PointCut() string {
	return a.Expression
}

func (a *MetricsAspect) Around(pjp types.ProceedingJoinPoint) (any, error) {
	a.metrics.IncrementCurrent()
	a.metrics.IncrementTotal()
	defer a.metrics.DecrementCurrent()
	result, err := pjp.Proceed()
	if err != nil {
		a.metrics.IncrementFailed()
	} else {
		a.metrics.IncrementSuccess()
	}
	return result, err
}

// GetMetrics 返回当前的指标
func (a *MetricsAspect) GetMetrics() *metrics.InvocationMetrics {
	return a.metrics
}
