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
	"reflect"
	"sort"

	"github.com/rulego/weaver/api/types"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// targetMethod is one entry of a proxy's dispatch table.
type targetMethod struct {
	sig types.MethodSignature
	fn  reflect.Value
	// errorResult is set when the last result is an error
	errorResult bool
}

// Proxy is the caller-facing handle of a registered target. Every Invoke is routed through
// the interception chain of the invoked method.
// Proxy 目标对象的代理，所有调用经过拦截链
type Proxy struct {
	name    string
	target  interface{}
	methods map[string]*targetMethod
	// names of the methods, sorted
	names   []string
	builder *ChainBuilder
	config  types.Config
}

func newProxy(name string, target interface{}, builder *ChainBuilder, config types.Config) (*Proxy, error) {
	v := reflect.ValueOf(target)
	t := v.Type()
	if t.NumMethod() == 0 {
		return nil, fmt.Errorf("%w: %s has no exported methods", types.ErrInvalidTarget, t)
	}
	p := &Proxy{
		name:    name,
		target:  target,
		methods: make(map[string]*targetMethod, t.NumMethod()),
		builder: builder,
		config:  config,
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		fn := v.Method(i)
		ft := fn.Type()
		p.methods[m.Name] = &targetMethod{
			sig:         Signature(name, m.Name, ft),
			fn:          fn,
			errorResult: ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType,
		}
		p.names = append(p.names, m.Name)
	}
	sort.Strings(p.names)
	return p, nil
}

// Name returns the declaring type name of the target.
func (p *Proxy) Name() string {
	return p.name
}

// Target returns the raw target. Calls made on it are not intercepted.
func (p *Proxy) Target() interface{} {
	return p.target
}

// Methods returns the signatures of the target methods sorted by name.
func (p *Proxy) Methods() []types.MethodSignature {
	sigs := make([]types.MethodSignature, 0, len(p.names))
	for _, name := range p.names {
		sigs = append(sigs, p.methods[name].sig)
	}
	return sigs
}

// Method returns the signature of the named method.
func (p *Proxy) Method(method string) (types.MethodSignature, bool) {
	m, ok := p.methods[method]
	if !ok {
		return types.MethodSignature{}, false
	}
	return m.sig, true
}

// MethodType returns the Go function type of the named method, receiver excluded.
func (p *Proxy) MethodType(method string) (reflect.Type, bool) {
	m, ok := p.methods[method]
	if !ok {
		return nil, false
	}
	return m.fn.Type(), true
}

// Chain returns the interception chain of the named method.
func (p *Proxy) Chain(method string) (*Chain, error) {
	m, ok := p.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrNoSuchTargetMethod, p.name, method)
	}
	return p.builder.Chain(m.sig), nil
}

// Invoke calls method on the target through its interception chain.
//
// A trailing error result of the method is returned as the error. The other results are
// returned as nil when there are none, as the value itself when there is one and as a
// []interface{} otherwise.
func (p *Proxy) Invoke(method string, args ...interface{}) (interface{}, error) {
	m, ok := p.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrNoSuchTargetMethod, p.name, method)
	}
	in, err := m.prepare(args)
	if err != nil {
		return nil, err
	}
	call := func() (interface{}, error) {
		return m.call(in)
	}
	d := types.NewMethodDescriptor(m.sig, p.target, args)
	chain := p.builder.Chain(m.sig)
	if chain.Empty() {
		return call()
	}
	return dispatch(p.config, chain, d, call)
}

// call invokes the target method with prepared arguments and normalises its results.
func (m *targetMethod) call(in []reflect.Value) (interface{}, error) {
	out := m.fn.Call(in)
	var resultErr error
	if m.errorResult {
		last := out[len(out)-1]
		if !last.IsNil() {
			resultErr = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	switch len(out) {
	case 0:
		return nil, resultErr
	case 1:
		return out[0].Interface(), resultErr
	default:
		values := make([]interface{}, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, resultErr
	}
}

// prepare converts args to the parameter values of the method. A variadic method accepts its
// trailing values one by one.
func (m *targetMethod) prepare(args []interface{}) ([]reflect.Value, error) {
	ft := m.fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, m.argError("want at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, m.argError("want %d arguments, got %d", n, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := argValue(arg, pt)
		if err != nil {
			return nil, m.argError("argument %d: %v", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func (m *targetMethod) argError(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", types.ErrInvalidArguments, m.sig.String(), fmt.Sprintf(format, a...))
}

func argValue(arg interface{}, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}
