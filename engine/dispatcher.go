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

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/utils/runtime"
)

// invoker calls the target method with the arguments of the call.
type invoker func() (interface{}, error)

// invocation executes a chain for one proxy call. It is local to the call.
type invocation struct {
	config types.Config
	chain  *Chain
	target interface{}
	args   []interface{}
	call   invoker
}

// dispatch runs the chain for one call with the descriptor d of the call.
func dispatch(config types.Config, chain *Chain, d types.MethodDescriptor, call invoker) (interface{}, error) {
	inv := &invocation{
		config: config,
		chain:  chain,
		target: d.Target,
		args:   d.Args,
		call:   call,
	}
	return inv.execLevel(0, d)
}

// execLevel enters level i. An AROUND advice receives a proceed thunk that re-enters the
// block of the level with a fresh descriptor on every call.
func (inv *invocation) execLevel(i int, d types.MethodDescriptor) (interface{}, error) {
	lv := &inv.chain.levels[i]
	if lv.around == nil || !applies(lv.around, d) {
		return inv.execBlock(i, d)
	}
	proceeded := false
	pjp := &proceedingJoinPoint{
		joinPoint: joinPoint{d: d},
		proceed: func() (interface{}, error) {
			proceeded = true
			return inv.execBlock(i, types.NewMethodDescriptor(d.MethodSignature, inv.target, inv.args))
		},
	}
	result, err := inv.fireAround(lv.around, pjp)
	if proceeded {
		return result, err
	}
	return inv.closeBlock(i, d, result, err)
}

// closeBlock finishes level i when its AROUND returned without calling proceed. BEFORE and
// AFTER_RETURNING of the level stay silent, AFTER_THROWING sees the AROUND failure and
// AFTER_FINALLY always fires.
func (inv *invocation) closeBlock(i int, d types.MethodDescriptor, result interface{}, err error) (interface{}, error) {
	lv := &inv.chain.levels[i]
	jp := &joinPoint{d: d}
	if err != nil {
		inv.debug(d, types.StateThrew, err)
		err = inv.fireAfterThrowings(lv, jp, d, err)
		inv.debug(d, types.StateAfterThrowingFired, err)
	}
	err = inv.fireAfters(lv, jp, d, err)
	inv.debug(d, types.StateAfterFinallyFired, err)
	if err != nil {
		inv.debug(d, types.StatePropagated, err)
		return nil, err
	}
	inv.debug(d, types.StateDone, nil)
	return result, nil
}

// inner runs what the block of level i wraps: the next level or the target.
func (inv *invocation) inner(i int, d types.MethodDescriptor) (interface{}, error) {
	if i+1 < len(inv.chain.levels) {
		return inv.execLevel(i+1, d)
	}
	return inv.invokeTarget(d)
}

// execBlock runs BEFORE -> inner -> AFTER_RETURNING | AFTER_THROWING -> AFTER_FINALLY of level i.
func (inv *invocation) execBlock(i int, d types.MethodDescriptor) (result interface{}, err error) {
	lv := &inv.chain.levels[i]
	jp := &joinPoint{d: d}
	inv.debug(d, types.StateNew, nil)

	for _, a := range lv.befores {
		if !applies(&a, d) {
			continue
		}
		if err = inv.fire(a.Advice, func() error { return a.before(jp) }); err != nil {
			break
		}
	}
	inv.debug(d, types.StateBeforeFired, err)

	innerFailed := false
	if err == nil {
		inv.debug(d, types.StateTargetRunning, nil)
		result, err = inv.inner(i, d)
		innerFailed = err != nil
	}

	if err == nil {
		inv.debug(d, types.StateReturned, nil)
		for _, a := range lv.afterReturnings {
			if !applies(&a, d) {
				continue
			}
			if err = inv.fire(a.Advice, func() error { return a.afterReturning(jp, result) }); err != nil {
				break
			}
		}
		if err == nil {
			inv.debug(d, types.StateAfterReturningFired, nil)
		}
	}

	if err != nil {
		inv.debug(d, types.StateThrew, err)
		err = inv.fireAfterThrowings(lv, jp, d, err)
		inv.debug(d, types.StateAfterThrowingFired, err)
	}

	err = inv.fireAfters(lv, jp, d, err)
	inv.debug(d, types.StateAfterFinallyFired, err)

	if err != nil {
		inv.debug(d, types.StatePropagated, err)
		// the inner call keeps its own (value, err) pair, an advice failure carries no value
		if !innerFailed {
			result = nil
		}
		return result, err
	}
	inv.debug(d, types.StateDone, nil)
	return result, nil
}

func (inv *invocation) fireAfterThrowings(lv *level, jp *joinPoint, d types.MethodDescriptor, err error) error {
	for _, a := range lv.afterThrowings {
		if !applies(&a, d) {
			continue
		}
		cause := err
		if e := inv.fire(a.Advice, func() error { return a.afterThrowing(jp, cause) }); e != nil {
			err = suppress(e, cause)
		}
	}
	return err
}

func (inv *invocation) fireAfters(lv *level, jp *joinPoint, d types.MethodDescriptor, err error) error {
	for _, a := range lv.afters {
		if !applies(&a, d) {
			continue
		}
		if e := inv.fire(a.Advice, func() error { return a.after(jp) }); e != nil {
			err = suppress(e, err)
		}
	}
	return err
}

func (inv *invocation) invokeTarget(d types.MethodDescriptor) (result interface{}, err error) {
	defer func() {
		if e := recover(); e != nil {
			stack := runtime.Stack()
			inv.config.Logger.Printf("target %s panic: %v\n%s", d.MethodSignature.String(), e, stack)
			result, err = nil, &types.PanicError{Value: e, Stack: stack}
		}
	}()
	return inv.call()
}

// fire runs a non-AROUND handler, wrapping its error or panic in a *types.AdviceError.
func (inv *invocation) fire(a *Advice, handler func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			stack := runtime.Stack()
			inv.config.Logger.Printf("advice %s panic: %v\n%s", a.Name, e, stack)
			err = &types.AdviceError{Advice: a.Name, Kind: a.Kind, Err: &types.PanicError{Value: e, Stack: stack}}
		}
	}()
	if e := handler(); e != nil {
		return &types.AdviceError{Advice: a.Name, Kind: a.Kind, Err: e}
	}
	return nil
}

// fireAround runs an AROUND handler. Its error is returned unchanged, only a panic is wrapped.
func (inv *invocation) fireAround(a *chainAdvice, pjp *proceedingJoinPoint) (result interface{}, err error) {
	defer func() {
		if e := recover(); e != nil {
			stack := runtime.Stack()
			inv.config.Logger.Printf("advice %s panic: %v\n%s", a.Name, e, stack)
			result, err = nil, &types.AdviceError{Advice: a.Name, Kind: a.Kind, Err: &types.PanicError{Value: e, Stack: stack}}
		}
	}()
	return a.around(pjp)
}

func (inv *invocation) debug(d types.MethodDescriptor, state types.State, err error) {
	if inv.config.OnDebug != nil {
		inv.config.OnDebug(d, state, err)
	}
}

// applies re-checks a dynamic advice against the current call.
func applies(a *chainAdvice, d types.MethodDescriptor) bool {
	return !a.dynamic || a.Pointcut.Matches(d)
}

// suppress records previous as the cause replaced by the handler failure err.
func suppress(err error, previous error) error {
	if previous == nil {
		return err
	}
	var adviceErr *types.AdviceError
	if errors.As(err, &adviceErr) && adviceErr.Suppressed == nil {
		adviceErr.Suppressed = previous
	}
	return err
}
