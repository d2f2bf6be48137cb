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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/pointcut"
	"golang.org/x/sync/singleflight"
)

// chainAdvice is an advice selected for a method. dynamic advices are re-checked per call.
type chainAdvice struct {
	*Advice
	dynamic bool
}

// level is one nesting level of a chain: an optional AROUND advice wrapping a block of
// BEFORE, AFTER_RETURNING, AFTER_THROWING and AFTER_FINALLY advices and the next level.
type level struct {
	around *chainAdvice
	// befores in firing order, ascending ordering key
	befores []chainAdvice
	// afterReturnings, afterThrowings and afters in firing order, descending ordering key
	afterReturnings []chainAdvice
	afterThrowings  []chainAdvice
	afters          []chainAdvice
}

// Chain is the interception chain of one target method.
// levels[0] has no AROUND; every following level is opened by an AROUND advice.
type Chain struct {
	Signature types.MethodSignature
	levels    []level
	advices   []*Advice
}

// BuildChain selects the advices that match sig and composes them. It is pure.
//
// Advices are sorted by ordering key, AROUND first among equal keys, then by registration
// sequence. Walking the sorted list, each AROUND opens a new nested level and every other
// advice joins the block of the current level. With all AROUNDs ordered before the other
// advices this is the classic layering: AROUNDs outermost-first wrapping a single
// BEFORE -> target -> AFTER_* block.
func BuildChain(sig types.MethodSignature, advices []*Advice) *Chain {
	var selected []chainAdvice
	for _, a := range advices {
		switch a.Pointcut.StaticMatch(sig) {
		case pointcut.Yes:
			selected = append(selected, chainAdvice{Advice: a})
		case pointcut.Maybe:
			selected = append(selected, chainAdvice{Advice: a, dynamic: true})
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return less(selected[i].Advice, selected[j].Advice)
	})

	chain := &Chain{Signature: sig, levels: make([]level, 1)}
	for _, a := range selected {
		chain.advices = append(chain.advices, a.Advice)
		if a.Kind == types.Around {
			around := a
			chain.levels = append(chain.levels, level{around: &around})
			continue
		}
		lv := &chain.levels[len(chain.levels)-1]
		switch a.Kind {
		case types.Before:
			lv.befores = append(lv.befores, a)
		case types.AfterReturning:
			lv.afterReturnings = append(lv.afterReturnings, a)
		case types.AfterThrowing:
			lv.afterThrowings = append(lv.afterThrowings, a)
		case types.After:
			lv.afters = append(lv.afters, a)
		}
	}
	for i := range chain.levels {
		lv := &chain.levels[i]
		reverse(lv.afterReturnings)
		reverse(lv.afterThrowings)
		reverse(lv.afters)
	}
	return chain
}

func less(a, b *Advice) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if (a.Kind == types.Around) != (b.Kind == types.Around) {
		return a.Kind == types.Around
	}
	return a.seq < b.seq
}

func reverse(s []chainAdvice) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Empty reports whether no advice matches the method.
func (c *Chain) Empty() bool {
	return len(c.advices) == 0
}

// Advices returns the selected advices in composition order.
func (c *Chain) Advices() []*Advice {
	return c.advices
}

// Depth returns the number of nesting levels, 1 when the chain has no AROUND advice.
func (c *Chain) Depth() int {
	return len(c.levels)
}

// ChainBuilder memoises chains by method. Concurrent misses for the same method are
// collapsed so the chain is built at most once per key.
type ChainBuilder struct {
	registry *Registry
	cache    sync.Map
	group    singleflight.Group
	builds   int64
}

// NewChainBuilder creates a builder over a frozen registry.
func NewChainBuilder(registry *Registry) *ChainBuilder {
	return &ChainBuilder{registry: registry}
}

// Chain returns the chain of sig, building it on first use.
func (b *ChainBuilder) Chain(sig types.MethodSignature) *Chain {
	key := sig.Key()
	if v, ok := b.cache.Load(key); ok {
		return v.(*Chain)
	}
	v, _, _ := b.group.Do(key, func() (interface{}, error) {
		if v, ok := b.cache.Load(key); ok {
			return v, nil
		}
		atomic.AddInt64(&b.builds, 1)
		chain := BuildChain(sig, b.registry.Advices())
		actual, _ := b.cache.LoadOrStore(key, chain)
		return actual, nil
	})
	return v.(*Chain)
}

// Builds returns how many chains were built.
func (b *ChainBuilder) Builds() int64 {
	return atomic.LoadInt64(&b.builds)
}
