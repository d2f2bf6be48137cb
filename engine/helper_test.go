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

package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/stretchr/testify/require"
)

const serviceTypeName = "com.example.service.EmployeeService"

var errSimulated = errors.New("Simulated exception")

type recorder struct {
	events []string
	sync.Mutex
}

func (r *recorder) add(format string, args ...interface{}) {
	r.Lock()
	defer r.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.Lock()
	defer r.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.list() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) exact(event string) int {
	n := 0
	for _, e := range r.list() {
		if e == event {
			n++
		}
	}
	return n
}

type employeeService struct {
	rec *recorder
}

func (s *employeeService) AddEmployee(name string) error {
	s.rec.add("Adding employee: %s", name)
	return nil
}

func (s *employeeService) DeleteEmployee(id string) error {
	s.rec.add("Deleting employee: %s", id)
	return nil
}

func (s *employeeService) CheckStatus(id string) (string, error) {
	s.rec.add("Checking status: %s", id)
	return "Active", nil
}

func (s *employeeService) ThrowError() error {
	s.rec.add("Throwing error")
	return errSimulated
}

func (s *employeeService) Sum(base int, values ...int) int {
	for _, v := range values {
		base += v
	}
	return base
}

func (s *employeeService) Split(full string) (string, string, error) {
	parts := strings.SplitN(full, " ", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("cannot split %q", full)
	}
	return parts[0], parts[1], nil
}

func (s *employeeService) Crash() error {
	panic("boom")
}

func newTestWeaver(t *testing.T, opts ...types.Option) *Weaver {
	opts = append([]types.Option{types.WithLogger(types.DiscardLogger())}, opts...)
	w, err := New(WithConfig(NewConfig(opts...)))
	require.NoError(t, err)
	return w
}

func newTestProxy(t *testing.T, w *Weaver, rec *recorder) *Proxy {
	proxy, err := w.RegisterTarget(&employeeService{rec: rec}, WithTypeName(serviceTypeName))
	require.NoError(t, err)
	return proxy
}

// registerEmployeeAdvices registers the five advices of the employee aspect, all with order key 0.
func registerEmployeeAdvices(t *testing.T, w *Weaver, rec *recorder, expr string) {
	_, err := w.Before(expr, 0, func(jp types.JoinPoint) error {
		rec.add("Before")
		return nil
	})
	require.NoError(t, err)
	_, err = w.After(expr, 0, func(jp types.JoinPoint) error {
		rec.add("After")
		return nil
	})
	require.NoError(t, err)
	_, err = w.AfterReturning(expr, 0, func(jp types.JoinPoint, result interface{}) error {
		rec.add("AfterReturning returned: %v", result)
		return nil
	})
	require.NoError(t, err)
	_, err = w.AfterThrowing(expr, 0, func(jp types.JoinPoint, err error) error {
		rec.add("AfterThrowing: %v", err)
		return nil
	})
	require.NoError(t, err)
	_, err = w.Around(expr, 0, func(pjp types.ProceedingJoinPoint) (interface{}, error) {
		rec.add("Around-Before")
		result, err := pjp.Proceed()
		if err != nil {
			rec.add("Around-AfterThrowing")
		} else {
			rec.add("Around-AfterReturning")
		}
		rec.add("Around-After")
		return result, err
	})
	require.NoError(t, err)
}
