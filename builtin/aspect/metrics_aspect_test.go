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
	"testing"

	"github.com/rulego/weaver/api/types/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAspect(t *testing.T) {
	m := metrics.NewInvocationMetrics()
	m.IncrementTotal()
	aspect := NewMetricsAspect(m)
	assert.Equal(t, 20, aspect.Order())

	proxy, _ := newCalculatorProxy(t, aspect)
	// registration resets the counters
	assert.Equal(t, int64(0), m.Get().Total)

	_, err := proxy.Invoke("Add", 1, 2)
	require.NoError(t, err)
	_, err = proxy.Invoke("Div", 4, 2)
	require.NoError(t, err)
	_, err = proxy.Invoke("Div", 4, 0)
	require.Error(t, err)

	got := aspect.GetMetrics().Get()
	assert.Equal(t, int64(3), got.Total)
	assert.Equal(t, int64(2), got.Success)
	assert.Equal(t, int64(1), got.Failed)
	assert.Equal(t, int64(0), got.Current)
}

func TestMetricsAspectScopedByExpression(t *testing.T) {
	aspect := NewMetricsAspect(nil)
	aspect.Expression = "execution(* *.Div(..))"
	proxy, _ := newCalculatorProxy(t, aspect)

	_, _ = proxy.Invoke("Add", 1, 2)
	_, _ = proxy.Invoke("Div", 4, 2)

	assert.Equal(t, int64(1), aspect.GetMetrics().Get().Total)
}
