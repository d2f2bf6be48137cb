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
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ types.BeforeAspect         = (*recordingAspect)(nil)
	_ types.AfterReturningAspect = (*recordingAspect)(nil)
	_ types.AfterThrowingAspect  = (*recordingAspect)(nil)
	_ types.AfterAspect          = (*recordingAspect)(nil)
	_ types.AroundAspect         = (*recordingAspect)(nil)
)

// recordingAspect implements every advice kind and records the calls
type recordingAspect struct {
	rec   *recorder
	order int
	kinds []types.AdviceKind
}

func (a *recordingAspect) Order() int {
	return a.order
}

func (a *recordingAspect) New() types.Aspect {
	return &recordingAspect{rec: a.rec, order: a.order, kinds: a.kinds}
}

func (a *recordingAspect) Type() string {
	return "recording"
}

func (a *recordingAspect) PointCut() string {
	return serviceMethods
}

func (a *recordingAspect) Before(jp types.JoinPoint) error {
	a.rec.add("Before %s", jp.MethodName())
	return nil
}

func (a *recordingAspect) AfterReturning(jp types.JoinPoint, result interface{}) error {
	a.rec.add("AfterReturning %v", result)
	return nil
}

func (a *recordingAspect) AfterThrowing(jp types.JoinPoint, err error) error {
	a.rec.add("AfterThrowing %v", err)
	return nil
}

func (a *recordingAspect) After(jp types.JoinPoint) error {
	a.rec.add("After")
	return nil
}

func (a *recordingAspect) Around(pjp types.ProceedingJoinPoint) (interface{}, error) {
	a.rec.add("Around-Before")
	result, err := pjp.Proceed()
	a.rec.add("Around-After")
	return result, err
}

// selectiveAspect narrows the registered kinds
type selectiveAspect struct {
	recordingAspect
}

func (a *selectiveAspect) New() types.Aspect {
	return &selectiveAspect{recordingAspect{rec: a.rec, order: a.order, kinds: a.kinds}}
}

func (a *selectiveAspect) Kinds() []types.AdviceKind {
	return a.kinds
}

type beforeOnly struct{}

func (a *beforeOnly) Order() int        { return 0 }
func (a *beforeOnly) New() types.Aspect { return &beforeOnly{} }
func (a *beforeOnly) PointCut() string  { return "" }
func (a *beforeOnly) Before(types.JoinPoint) error {
	return errors.New("denied")
}

type notMethodAspect struct{}

func (a *notMethodAspect) Order() int        { return 0 }
func (a *notMethodAspect) New() types.Aspect { return &notMethodAspect{} }

func TestRegisterAspect(t *testing.T) {
	rec := &recorder{}
	w := newTestWeaver(t)
	require.NoError(t, w.RegisterAspect(&recordingAspect{rec: rec}))
	assert.Equal(t, 5, w.Registry().Len())
	for _, a := range w.Registry().Advices() {
		assert.Equal(t, "recording", a.Name)
	}
	proxy := newTestProxy(t, w, rec)

	_, err := proxy.Invoke("AddEmployee", "Ram")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Around-Before",
		"Before AddEmployee",
		"Adding employee: Ram",
		"AfterReturning <nil>",
		"After",
		"Around-After",
	}, rec.list())

	rec.events = nil
	_, err = proxy.Invoke("ThrowError")
	assert.Same(t, errSimulated, err)
	assert.Equal(t, []string{
		"Around-Before",
		"Before ThrowError",
		"Throwing error",
		"AfterThrowing Simulated exception",
		"After",
		"Around-After",
	}, rec.list())
}

func TestRegisterAspectKindSelector(t *testing.T) {
	rec := &recorder{}
	w := newTestWeaver(t)
	aspect := &selectiveAspect{recordingAspect{rec: rec, kinds: []types.AdviceKind{types.Before, types.After}}}
	require.NoError(t, w.RegisterAspect(aspect))
	assert.Equal(t, 2, w.Registry().Len())
	proxy := newTestProxy(t, w, rec)

	_, err := proxy.Invoke("DeleteEmployee", "EMP101")
	require.NoError(t, err)
	assert.Equal(t, []string{"Before DeleteEmployee", "Deleting employee: EMP101", "After"}, rec.list())
}

func TestRegisterAspectDefaultPointcut(t *testing.T) {
	w := newTestWeaver(t)
	require.NoError(t, w.RegisterAspect(&beforeOnly{}))
	advices := w.Registry().Advices()
	require.Len(t, advices, 1)
	assert.Equal(t, DefaultPointcut, advices[0].Pointcut.Source())
	assert.Equal(t, "*engine.beforeOnly", advices[0].Name)

	proxy := newTestProxy(t, w, &recorder{})
	_, err := proxy.Invoke("CheckStatus", "EMP101")
	assert.True(t, errors.Is(err, types.ErrAdviceHandlerFailure))
}

func TestRegisterAspectErrors(t *testing.T) {
	w := newTestWeaver(t)
	assert.True(t, errors.Is(w.RegisterAspect(nil), types.ErrInvalidAdviceHandler))
	assert.True(t, errors.Is(w.RegisterAspect(&notMethodAspect{}), types.ErrInvalidAdviceHandler))
	selective := &selectiveAspect{recordingAspect{rec: &recorder{}}}
	assert.True(t, errors.Is(w.RegisterAspect(selective), types.ErrInvalidAdviceHandler))
}

func TestWithAspects(t *testing.T) {
	rec := &recorder{}
	w, err := New(WithConfig(NewConfig(types.WithLogger(types.DiscardLogger()))), WithAspects(&recordingAspect{rec: rec, order: 1}))
	require.NoError(t, err)
	assert.Equal(t, 5, w.Registry().Len())
	assert.Equal(t, 1, w.Registry().Advices()[0].Order)
}
