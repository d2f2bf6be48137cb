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
	"errors"
	"sync"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyLimiterAspect(t *testing.T) {
	maxConcurrent := 2
	aspect := NewConcurrencyLimiterAspect(maxConcurrent)

	assert.Equal(t, 10, aspect.Order())
	assert.Equal(t, "limiter", aspect.Type())

	newAspect := aspect.New().(*ConcurrencyLimiterAspect)
	assert.NotNil(t, newAspect)
	assert.Equal(t, int64(maxConcurrent), newAspect.Max)
	assert.Equal(t, int64(0), newAspect.Current())
	assert.Equal(t, "", newAspect.PointCut())
}

func TestConcurrencyLimiterRejects(t *testing.T) {
	proxy, target := newCalculatorProxy(t, NewConcurrencyLimiterAspect(1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := proxy.Invoke("Wait")
		assert.NoError(t, err)
	}()
	<-target.started

	// 上一条没执行完，并发超过限制
	_, err := proxy.Invoke("Add", 1, 2)
	assert.True(t, errors.Is(err, types.ErrConcurrencyLimitReached))
	assert.Equal(t, int64(0), target.Calls())

	close(target.release)
	wg.Wait()

	// 都已经执行完，解除并发限制
	result, err := proxy.Invoke("Add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestConcurrencyLimiterReleasesOnError(t *testing.T) {
	proxy, _ := newCalculatorProxy(t, NewConcurrencyLimiterAspect(1))
	for i := 0; i < 3; i++ {
		_, err := proxy.Invoke("Div", 1, 0)
		assert.True(t, errors.Is(err, errDivByZero))
	}
	result, err := proxy.Invoke("Div", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}
