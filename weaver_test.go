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

package weaver

import (
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{}

func (g *greeter) Hello(name string) string {
	return "hello " + name
}

func TestPool(t *testing.T) {
	w, err := New("test01", engine.WithConfig(engine.NewConfig(types.WithLogger(types.DiscardLogger()))))
	require.NoError(t, err)

	got, ok := Get("test01")
	require.True(t, ok)
	assert.Same(t, w, got)

	_, err = w.Around("execution(* *.Hello(..))", 0, func(pjp types.ProceedingJoinPoint) (any, error) {
		result, err := pjp.Proceed()
		return result.(string) + "!", err
	})
	require.NoError(t, err)
	proxy, err := w.RegisterTarget(&greeter{})
	require.NoError(t, err)
	assert.Equal(t, "github.com.rulego.weaver.greeter", proxy.Name())

	result, err := proxy.Invoke("Hello", "ram")
	require.NoError(t, err)
	assert.Equal(t, "hello ram!", result)

	count := 0
	DefaultPool.Range(func(id string, w *engine.Weaver) bool {
		count++
		return true
	})
	assert.True(t, count >= 1)

	Del("test01")
	_, ok = Get("test01")
	assert.False(t, ok)
}
