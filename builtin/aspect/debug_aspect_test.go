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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugAspect(t *testing.T) {
	logger := &memLogger{}
	proxy, _ := newCalculatorProxy(t, &Debug{Logger: logger})

	_, err := proxy.Invoke("Add", 1, 2)
	require.NoError(t, err)
	_, err = proxy.Invoke("Div", 1, 0)
	require.Error(t, err)

	lines := logger.Lines()
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "[In]"))
	assert.Contains(t, lines[0], "int com.example.calc.Calculator.Add(int, int)")
	assert.Contains(t, lines[0], "args=[1 2]")
	assert.Contains(t, lines[1], "result=3")
	assert.True(t, strings.HasPrefix(lines[3], "[Out]"))
	assert.Contains(t, lines[3], "err=division by zero")
}

func TestDebugAspectPointCut(t *testing.T) {
	logger := &memLogger{}
	proxy, _ := newCalculatorProxy(t, &Debug{Logger: logger, Expression: "execution(* *.Add(..))"})

	_, _ = proxy.Invoke("Div", 4, 2)
	assert.Len(t, logger.Lines(), 0)
	_, _ = proxy.Invoke("Add", 1, 2)
	assert.Len(t, logger.Lines(), 2)

	debug := &Debug{}
	assert.Equal(t, 900, debug.Order())
	assert.Equal(t, "debug", debug.Type())
	assert.NotNil(t, debug.New().(*Debug).Logger)
}
