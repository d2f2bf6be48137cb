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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryTypes(t *testing.T) {
	assert.Equal(t, []string{"debug", "fallback", "limiter", "metrics", "script"}, Registry.Types())
}

func TestRegistryNew(t *testing.T) {
	limiter, err := Registry.New("limiter", map[string]interface{}{"max": "5", "expression": "within(com.example..*)"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), limiter.(*ConcurrencyLimiterAspect).Max)
	assert.Equal(t, "within(com.example..*)", limiter.(*ConcurrencyLimiterAspect).PointCut())

	fallback, err := Registry.New("fallback", map[string]interface{}{"errorCountLimit": 4, "limitDuration": "30s"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), fallback.(*SkipFallbackAspect).ErrorCountLimit)
	assert.Equal(t, time.Second*30, fallback.(*SkipFallbackAspect).LimitDuration)

	script, err := Registry.New("script", map[string]interface{}{"order": 7, "script": "function before(jp) {}"})
	require.NoError(t, err)
	assert.Equal(t, 7, script.Order())

	// defaults are applied by New
	fallback, err = Registry.New("fallback", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fallback.New().(*SkipFallbackAspect).ErrorCountLimit)

	_, err = Registry.New("unknown", nil)
	assert.True(t, errors.Is(err, ErrAspectNotFound))

	_, err = Registry.New("limiter", map[string]interface{}{"max": "many"})
	assert.Error(t, err)
}

func TestRegistryMetricsInstancesAreIndependent(t *testing.T) {
	a, err := Registry.New("metrics", nil)
	require.NoError(t, err)
	b, err := Registry.New("metrics", nil)
	require.NoError(t, err)

	proxyA, _ := newCalculatorProxy(t, a)
	_, _ = newCalculatorProxy(t, b)
	_, err = proxyA.Invoke("Add", 1, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.(*MetricsAspect).GetMetrics().Get().Total)
	assert.Equal(t, int64(0), b.(*MetricsAspect).GetMetrics().Get().Total)
}

func TestRegistryRegister(t *testing.T) {
	r := NewAspectRegistry()
	r.Register(&Debug{})
	assert.Equal(t, []string{"debug"}, r.Types())
	r.Unregister("debug")
	assert.Empty(t, r.Types())
}
