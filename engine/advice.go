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
	"fmt"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/pointcut"
)

// Advice is a handler of one kind bound to a pointcut. It is immutable once registered.
type Advice struct {
	// Name identifies the advice in errors and logs
	Name string
	// Kind is the phase at which the handler fires
	Kind types.AdviceKind
	// Pointcut selects the intercepted methods
	Pointcut *pointcut.Pointcut
	// Order is the ordering key, smaller values are outer
	Order int
	// seq is the registration sequence, used to break ties between equal ordering keys
	seq int

	before         types.BeforeFunc
	afterReturning types.AfterReturningFunc
	afterThrowing  types.AfterThrowingFunc
	after          types.AfterFunc
	around         types.AroundFunc
}

// NewAdvice creates an advice. The handler must fit the kind: a types.BeforeFunc (or a plain
// func(types.JoinPoint) error) for Before, a types.AroundFunc for Around and so on.
// The matching aspect interfaces (types.BeforeAspect, types.AroundAspect...) are accepted too.
func NewAdvice(name string, kind types.AdviceKind, pc *pointcut.Pointcut, handler interface{}, order int) (*Advice, error) {
	if pc == nil {
		return nil, fmt.Errorf("advice %s: %w: nil pointcut", name, types.ErrInvalidAdviceHandler)
	}
	a := &Advice{Name: name, Kind: kind, Pointcut: pc, Order: order}
	ok := false
	switch kind {
	case types.Before:
		switch h := handler.(type) {
		case types.BeforeFunc:
			a.before, ok = h, h != nil
		case func(types.JoinPoint) error:
			a.before, ok = h, h != nil
		case types.BeforeAspect:
			a.before, ok = h.Before, true
		}
	case types.AfterReturning:
		switch h := handler.(type) {
		case types.AfterReturningFunc:
			a.afterReturning, ok = h, h != nil
		case func(types.JoinPoint, interface{}) error:
			a.afterReturning, ok = h, h != nil
		case types.AfterReturningAspect:
			a.afterReturning, ok = h.AfterReturning, true
		}
	case types.AfterThrowing:
		switch h := handler.(type) {
		case types.AfterThrowingFunc:
			a.afterThrowing, ok = h, h != nil
		case func(types.JoinPoint, error) error:
			a.afterThrowing, ok = h, h != nil
		case types.AfterThrowingAspect:
			a.afterThrowing, ok = h.AfterThrowing, true
		}
	case types.After:
		switch h := handler.(type) {
		case types.AfterFunc:
			a.after, ok = h, h != nil
		case func(types.JoinPoint) error:
			a.after, ok = h, h != nil
		case types.AfterAspect:
			a.after, ok = h.After, true
		}
	case types.Around:
		switch h := handler.(type) {
		case types.AroundFunc:
			a.around, ok = h, h != nil
		case func(types.ProceedingJoinPoint) (interface{}, error):
			a.around, ok = h, h != nil
		case types.AroundAspect:
			a.around, ok = h.Around, true
		}
	default:
		return nil, fmt.Errorf("advice %s: %w: unknown kind %v", name, types.ErrInvalidAdviceHandler, kind)
	}
	if !ok {
		return nil, fmt.Errorf("advice %s: %w: %T cannot handle %v", name, types.ErrInvalidAdviceHandler, handler, kind)
	}
	return a, nil
}

// Seq returns the registration sequence of the advice, zero before registration.
func (a *Advice) Seq() int {
	return a.seq
}

func (a *Advice) String() string {
	return fmt.Sprintf("%s[%v order=%d %s]", a.Name, a.Kind, a.Order, a.Pointcut.Source())
}
