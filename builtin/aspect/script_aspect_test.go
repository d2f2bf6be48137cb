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

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptAspectKinds(t *testing.T) {
	aspect := &ScriptAspect{Script: `
		function before(jp) {}
		function around(jp) { return jp.proceed(); }
	`}
	require.NoError(t, aspect.Init())
	assert.Equal(t, []types.AdviceKind{types.Before, types.Around}, aspect.Kinds())
}

func TestScriptAspectInitErrors(t *testing.T) {
	assert.True(t, errors.Is((&ScriptAspect{}).Init(), ErrEmptyScript))
	assert.Error(t, (&ScriptAspect{Script: "function before(jp) {"}).Init())

	// a script without advice functions cannot be registered
	_, err := engine.New(engine.WithAspects(&ScriptAspect{Script: "var a = 1;"}))
	assert.True(t, errors.Is(err, types.ErrInvalidAdviceHandler))
}

func TestScriptBeforeThrows(t *testing.T) {
	proxy, target := newCalculatorProxy(t, &ScriptAspect{
		Expression: "execution(* *.Div(int, int))",
		Script: `
		function before(jp) {
			if (jp.method === "Div" && jp.args[1] === 0) {
				throw new Error("refused: zero divisor");
			}
		}`,
	})

	_, err := proxy.Invoke("Div", 1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrAdviceHandlerFailure))
	assert.Contains(t, err.Error(), "refused: zero divisor")
	assert.Equal(t, int64(0), target.Calls())

	result, err := proxy.Invoke("Div", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}

func TestScriptAround(t *testing.T) {
	proxy, target := newCalculatorProxy(t, &ScriptAspect{
		Expression: "execution(int *.Add(..))",
		Script: `
		function around(jp) {
			var r = jp.proceed();
			return r * 10;
		}`,
	})

	result, err := proxy.Invoke("Add", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 30, result)
	assert.Equal(t, int64(1), target.Calls())
}

func TestScriptAroundPropagatesProceedError(t *testing.T) {
	proxy, _ := newCalculatorProxy(t, &ScriptAspect{
		Script: `
		function around(jp) {
			return jp.proceed();
		}`,
	})

	_, err := proxy.Invoke("Div", 1, 0)
	assert.True(t, errors.Is(err, errDivByZero))
}

func TestScriptAroundRethrowsProceedError(t *testing.T) {
	proxy, _ := newCalculatorProxy(t, &ScriptAspect{
		Script: `
		function around(jp) {
			try {
				return jp.proceed();
			} catch (e) {
				log("proceed failed");
				throw e;
			}
		}`,
	})

	_, err := proxy.Invoke("Div", 1, 0)
	assert.True(t, errors.Is(err, errDivByZero))
}

func TestScriptAroundOwnErrorIsNotProceedError(t *testing.T) {
	proxy, _ := newCalculatorProxy(t, &ScriptAspect{
		Script: `
		function around(jp) {
			try {
				return jp.proceed();
			} catch (e) {
				throw new Error("wrapped: " + e.message);
			}
		}`,
	})

	_, err := proxy.Invoke("Div", 1, 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errDivByZero))
	assert.Contains(t, err.Error(), errDivByZero.Error())
}

func TestScriptAroundCatchesProceedError(t *testing.T) {
	proxy, _ := newCalculatorProxy(t, &ScriptAspect{
		Script: `
		function around(jp) {
			try {
				return jp.proceed();
			} catch (e) {
				return -1;
			}
		}`,
	})

	result, err := proxy.Invoke("Div", 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, -1, result)
}

func TestScriptObservers(t *testing.T) {
	logger := &memLogger{}
	proxy, _ := newCalculatorProxy(t, &ScriptAspect{
		Logger:   logger,
		Priority: 5,
		Script: `
		function afterReturning(jp, result) { log("returned %v", result); }
		function afterThrowing(jp, err) { log("threw %s", err); }
		function after(jp) { log("after %s.%s", jp.declaringType, jp.method); }
		`,
	})

	_, _ = proxy.Invoke("Add", 1, 2)
	_, _ = proxy.Invoke("Div", 1, 0)

	assert.Equal(t, []string{
		"returned 3",
		"after com.example.calc.Calculator.Add",
		"threw division by zero",
		"after com.example.calc.Calculator.Div",
	}, logger.Lines())
}
