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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/stretchr/testify/require"
)

const calculatorType = "com.example.calc.Calculator"

var (
	errDivByZero = errors.New("division by zero")
	errFlaky     = errors.New("flaky failure")
)

type calculator struct {
	calls   int64
	failing atomic.Bool
	started chan struct{}
	release chan struct{}
}

func newCalculator() *calculator {
	return &calculator{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (c *calculator) Add(a, b int) int {
	atomic.AddInt64(&c.calls, 1)
	return a + b
}

func (c *calculator) Div(a, b int) (int, error) {
	atomic.AddInt64(&c.calls, 1)
	if b == 0 {
		return 0, errDivByZero
	}
	return a / b, nil
}

func (c *calculator) Flaky() error {
	atomic.AddInt64(&c.calls, 1)
	if c.failing.Load() {
		return errFlaky
	}
	return nil
}

func (c *calculator) Wait() {
	c.started <- struct{}{}
	<-c.release
}

func (c *calculator) Calls() int64 {
	return atomic.LoadInt64(&c.calls)
}

// memLogger collects log lines.
type memLogger struct {
	lines []string
	sync.Mutex
}

func (l *memLogger) Printf(format string, v ...interface{}) {
	l.Lock()
	defer l.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *memLogger) Lines() []string {
	l.Lock()
	defer l.Unlock()
	return append([]string(nil), l.lines...)
}

func newCalculatorProxy(t *testing.T, aspects ...types.Aspect) (*engine.Proxy, *calculator) {
	t.Helper()
	config := engine.NewConfig(types.WithLogger(types.DiscardLogger()))
	w, err := engine.New(engine.WithConfig(config), engine.WithAspects(aspects...))
	require.NoError(t, err)
	target := newCalculator()
	proxy, err := w.RegisterTarget(target, engine.WithTypeName(calculatorType))
	require.NoError(t, err)
	return proxy, target
}
