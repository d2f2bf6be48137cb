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
	"sync"
	"sync/atomic"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/pointcut"
)

// Registry is the advisor registry: the ordered set of advices and named pointcuts.
// It is populated during registration and frozen before the first proxy is issued.
// Once frozen it never changes, so reads do not take the lock.
// Registry 切面注册表，冻结之后不可修改，读取无锁。
type Registry struct {
	// advices in registration order
	advices []*Advice
	// pointcuts holds the named pointcuts, referenced as name() in expressions
	pointcuts map[string]*pointcut.Pointcut
	seq       int
	frozen    atomic.Bool
	sync.RWMutex
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{pointcuts: make(map[string]*pointcut.Pointcut)}
}

// Compile compiles a pointcut expression, resolving name() references against the named pointcuts.
func (r *Registry) Compile(expr string) (*pointcut.Pointcut, error) {
	r.RLock()
	defer r.RUnlock()
	return pointcut.Compile(expr, r.lookup)
}

func (r *Registry) lookup(name string) (*pointcut.Pointcut, bool) {
	pc, ok := r.pointcuts[name]
	return pc, ok
}

// DefinePointcut compiles expr and stores it under name.
func (r *Registry) DefinePointcut(name string, expr string) (*pointcut.Pointcut, error) {
	r.Lock()
	defer r.Unlock()
	if r.frozen.Load() {
		return nil, types.ErrRegistryFrozen
	}
	if _, ok := r.pointcuts[name]; ok {
		return nil, fmt.Errorf("pointcut %s already defined", name)
	}
	pc, err := pointcut.Compile(expr, r.lookup)
	if err != nil {
		return nil, err
	}
	r.pointcuts[name] = pc
	return pc, nil
}

// Pointcut returns the named pointcut.
func (r *Registry) Pointcut(name string) (*pointcut.Pointcut, bool) {
	if !r.frozen.Load() {
		r.RLock()
		defer r.RUnlock()
	}
	return r.lookup(name)
}

// Register appends an advice and assigns its registration sequence.
func (r *Registry) Register(advice *Advice) error {
	r.Lock()
	defer r.Unlock()
	if r.frozen.Load() {
		return types.ErrRegistryFrozen
	}
	r.seq++
	advice.seq = r.seq
	r.advices = append(r.advices, advice)
	return nil
}

// Freeze makes the registry immutable. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen.Load() {
		return
	}
	r.Lock()
	defer r.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Advices returns the advices in registration order. The returned slice must not be modified.
func (r *Registry) Advices() []*Advice {
	if r.frozen.Load() {
		return r.advices
	}
	r.RLock()
	defer r.RUnlock()
	advices := make([]*Advice, len(r.advices))
	copy(advices, r.advices)
	return advices
}

// Len returns the number of registered advices.
func (r *Registry) Len() int {
	return len(r.Advices())
}
