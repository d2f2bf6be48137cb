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

// Package engine provides the method interception core: the advisor registry, the
// interception chain builder, the invocation dispatcher and the proxy surface.
//
// Typical usage:
//
//	w := engine.New(engine.WithConfig(engine.NewConfig(types.WithLogger(logger))))
//	_, _ = w.Before("execution(* *.AddEmployee(..))", 0, func(jp types.JoinPoint) error {
//		logger.Printf("Before: %s", jp.MethodName())
//		return nil
//	})
//	proxy, _ := w.RegisterTarget(&EmployeeServiceImpl{})
//	result, err := proxy.Invoke("AddEmployee", "Ram")
//
// engine 包提供方法拦截核心：切面注册表、拦截链构建、调用分发和代理。
package engine

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/rulego/weaver/api/types"
)

// DefaultPointcut intercepts every method.
const DefaultPointcut = "execution(* *(..))"

// Option configures a Weaver.
type Option func(w *Weaver) error

// WithConfig sets the configuration of the weaver.
// WithConfig 设置 weaver 配置
func WithConfig(config types.Config) Option {
	return func(w *Weaver) error {
		w.Config = config
		return nil
	}
}

// WithAspects registers aspects when the weaver is created.
// WithAspects 创建时注册切面
func WithAspects(aspects ...types.Aspect) Option {
	return func(w *Weaver) error {
		for _, aspect := range aspects {
			if err := w.RegisterAspect(aspect); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewConfig creates a Config with defaults and applies the options.
func NewConfig(opts ...types.Option) types.Config {
	c := types.NewConfig(opts...)
	if c.Logger == nil {
		c.Logger = types.DefaultLogger()
	}
	return c
}

// Weaver owns an advisor registry and the proxies issued for registered targets.
//
// Registration (advices, aspects, named pointcuts) happens first. The registry is frozen by
// Freeze or by the first RegisterTarget; later registrations fail with types.ErrRegistryFrozen.
// Proxies may then be invoked concurrently.
//
// Weaver 拥有切面注册表以及为目标对象创建的代理。
// 注册阶段完成后（Freeze 或第一次 RegisterTarget）注册表被冻结，之后可以并发调用代理。
type Weaver struct {
	// Config is the configuration of the weaver
	Config   types.Config
	registry *Registry
	builder  *ChainBuilder
	proxies  map[string]*Proxy
	sync.RWMutex
}

// New creates a weaver and applies the options.
func New(opts ...Option) (*Weaver, error) {
	registry := NewRegistry()
	w := &Weaver{
		Config:   NewConfig(),
		registry: registry,
		builder:  NewChainBuilder(registry),
		proxies:  make(map[string]*Proxy),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if w.Config.Logger == nil {
		w.Config.Logger = types.DefaultLogger()
	}
	return w, nil
}

// Registry returns the advisor registry.
func (w *Weaver) Registry() *Registry {
	return w.registry
}

// ChainBuilder returns the chain builder shared by the proxies of the weaver.
func (w *Weaver) ChainBuilder() *ChainBuilder {
	return w.builder
}

// RegisterAdvice compiles expr and registers handler as an advice of the given kind.
// See NewAdvice for the accepted handler types.
func (w *Weaver) RegisterAdvice(name string, kind types.AdviceKind, expr string, handler interface{}, order int) (*Advice, error) {
	if w.registry.Frozen() {
		return nil, types.ErrRegistryFrozen
	}
	pc, err := w.registry.Compile(expr)
	if err != nil {
		return nil, err
	}
	advice, err := NewAdvice(name, kind, pc, handler, order)
	if err != nil {
		return nil, err
	}
	if err := w.registry.Register(advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// Before registers a BEFORE advice.
func (w *Weaver) Before(expr string, order int, handler types.BeforeFunc) (*Advice, error) {
	return w.RegisterAdvice(adviceName(types.Before, expr), types.Before, expr, handler, order)
}

// AfterReturning registers an AFTER_RETURNING advice.
func (w *Weaver) AfterReturning(expr string, order int, handler types.AfterReturningFunc) (*Advice, error) {
	return w.RegisterAdvice(adviceName(types.AfterReturning, expr), types.AfterReturning, expr, handler, order)
}

// AfterThrowing registers an AFTER_THROWING advice.
func (w *Weaver) AfterThrowing(expr string, order int, handler types.AfterThrowingFunc) (*Advice, error) {
	return w.RegisterAdvice(adviceName(types.AfterThrowing, expr), types.AfterThrowing, expr, handler, order)
}

// After registers an AFTER_FINALLY advice.
func (w *Weaver) After(expr string, order int, handler types.AfterFunc) (*Advice, error) {
	return w.RegisterAdvice(adviceName(types.After, expr), types.After, expr, handler, order)
}

// Around registers an AROUND advice.
func (w *Weaver) Around(expr string, order int, handler types.AroundFunc) (*Advice, error) {
	return w.RegisterAdvice(adviceName(types.Around, expr), types.Around, expr, handler, order)
}

func adviceName(kind types.AdviceKind, expr string) string {
	return kind.String() + " " + expr
}

// RegisterAspect registers one advice per advice kind the aspect implements, all bound to
// the pointcut of the aspect and ordered by its Order. A new instance is created with New.
// Aspects implementing types.Initializer are initialised first, and aspects implementing
// types.KindSelector register only the selected kinds.
// RegisterAspect 按切面实现的增强点类型注册增强
func (w *Weaver) RegisterAspect(aspect types.Aspect) error {
	if aspect == nil {
		return fmt.Errorf("%w: nil aspect", types.ErrInvalidAdviceHandler)
	}
	instance, ok := aspect.New().(types.MethodAspect)
	if !ok {
		return fmt.Errorf("%w: %T is not a method aspect", types.ErrInvalidAdviceHandler, aspect)
	}
	name := aspectName(instance)
	if initializer, ok := instance.(types.Initializer); ok {
		if err := initializer.Init(); err != nil {
			return fmt.Errorf("aspect %s: %w", name, err)
		}
	}
	expr := instance.PointCut()
	if expr == "" {
		expr = DefaultPointcut
	}
	kinds := implementedKinds(instance)
	if selector, ok := instance.(types.KindSelector); ok {
		kinds = selector.Kinds()
	}
	if len(kinds) == 0 {
		return fmt.Errorf("%w: %s implements no advice", types.ErrInvalidAdviceHandler, name)
	}
	if w.registry.Frozen() {
		return types.ErrRegistryFrozen
	}
	pc, err := w.registry.Compile(expr)
	if err != nil {
		return fmt.Errorf("aspect %s: %w", name, err)
	}
	var advices []*Advice
	for _, kind := range kinds {
		advice, err := NewAdvice(name, kind, pc, instance, instance.Order())
		if err != nil {
			return err
		}
		advices = append(advices, advice)
	}
	for _, advice := range advices {
		if err := w.registry.Register(advice); err != nil {
			return err
		}
	}
	return nil
}

func aspectName(aspect types.Aspect) string {
	if typed, ok := aspect.(types.TypedAspect); ok {
		return typed.Type()
	}
	return reflect.TypeOf(aspect).String()
}

func implementedKinds(aspect types.Aspect) []types.AdviceKind {
	var kinds []types.AdviceKind
	if _, ok := aspect.(types.BeforeAspect); ok {
		kinds = append(kinds, types.Before)
	}
	if _, ok := aspect.(types.AfterReturningAspect); ok {
		kinds = append(kinds, types.AfterReturning)
	}
	if _, ok := aspect.(types.AfterThrowingAspect); ok {
		kinds = append(kinds, types.AfterThrowing)
	}
	if _, ok := aspect.(types.AfterAspect); ok {
		kinds = append(kinds, types.After)
	}
	if _, ok := aspect.(types.AroundAspect); ok {
		kinds = append(kinds, types.Around)
	}
	return kinds
}

// DefinePointcut stores a named pointcut that later expressions reference as name().
func (w *Weaver) DefinePointcut(name string, expr string) error {
	_, err := w.registry.DefinePointcut(name, expr)
	return err
}

// Freeze makes the registry immutable. It is idempotent.
func (w *Weaver) Freeze() {
	w.registry.Freeze()
}

// TargetOption configures a registered target.
type TargetOption func(o *targetOptions)

type targetOptions struct {
	typeName string
}

// WithTypeName overrides the declaring type name used to match pointcuts against the target,
// for example com.example.service.EmployeeService.
func WithTypeName(name string) TargetOption {
	return func(o *targetOptions) {
		o.typeName = name
	}
}

// RegisterTarget freezes the registry and returns the proxy of target.
// RegisterTarget 冻结注册表并返回目标对象的代理
func (w *Weaver) RegisterTarget(target interface{}, opts ...TargetOption) (*Proxy, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", types.ErrInvalidTarget)
	}
	var o targetOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := o.typeName
	if name == "" {
		name = TypeName(reflect.TypeOf(target))
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %T has no type name, use WithTypeName", types.ErrInvalidTarget, target)
	}
	w.registry.Freeze()
	proxy, err := newProxy(name, target, w.builder, w.Config)
	if err != nil {
		return nil, err
	}
	w.Lock()
	defer w.Unlock()
	if _, ok := w.proxies[name]; ok {
		return nil, fmt.Errorf("%w: %s", types.ErrTargetExists, name)
	}
	w.proxies[name] = proxy
	return proxy, nil
}

// Proxy returns the proxy registered under the declaring type name.
func (w *Weaver) Proxy(name string) (*Proxy, bool) {
	w.RLock()
	defer w.RUnlock()
	proxy, ok := w.proxies[name]
	return proxy, ok
}

// Proxies returns the registered proxies sorted by name.
func (w *Weaver) Proxies() []*Proxy {
	w.RLock()
	defer w.RUnlock()
	proxies := make([]*Proxy, 0, len(w.proxies))
	for _, proxy := range w.proxies {
		proxies = append(proxies, proxy)
	}
	sort.Slice(proxies, func(i, j int) bool {
		return proxies[i].name < proxies[j].name
	})
	return proxies
}
