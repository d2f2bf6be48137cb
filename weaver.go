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

// Package weaver provides in-process, aspect-oriented method interception for Go.
//
// # Usage
//
// Register advices bound to pointcut expressions, then register target objects and call them
// through the returned proxies. Every proxy call runs the BEFORE, AFTER_RETURNING,
// AFTER_THROWING, AFTER_FINALLY and AROUND advices whose pointcut matches the method.
//
// Create Weaver Instance
//
//	w, err := weaver.New("employee")
//
// Define Named Pointcut
//
//	err = w.DefinePointcut("serviceMethods", "execution(* com.example.service.*.*(..))")
//
// Register Advices
//
//	_, err = w.Before("serviceMethods()", 0, func(jp types.JoinPoint) error {
//		fmt.Println("Before:", jp.MethodName())
//		return nil
//	})
//	_, err = w.Around("serviceMethods()", 0, func(pjp types.ProceedingJoinPoint) (any, error) {
//		fmt.Println("Around-Before")
//		return pjp.Proceed()
//	})
//
// Register Aspects
//
//	err = w.RegisterAspect(&aspect.Debug{})
//
// Register Target And Invoke
//
//	proxy, err := w.RegisterTarget(&EmployeeServiceImpl{}, engine.WithTypeName("com.example.service.EmployeeService"))
//	result, err := proxy.Invoke("CheckStatus", "EMP101")
//
// Get Weaver Instance
//
//	w, ok := weaver.Get("employee")
package weaver

import (
	"sync"

	"github.com/rulego/weaver/engine"
)

// DefaultPool is the default pool of weaver instances.
var DefaultPool = &Pool{}

// Pool 织入器实例池, weaver instances by id.
type Pool struct {
	weavers sync.Map
}

// New creates a weaver and stores it in the pool under id, replacing any previous instance.
func (p *Pool) New(id string, opts ...engine.Option) (*engine.Weaver, error) {
	w, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}
	p.weavers.Store(id, w)
	return w, nil
}

// Get 获取指定ID织入器实例
func (p *Pool) Get(id string) (*engine.Weaver, bool) {
	v, ok := p.weavers.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*engine.Weaver), true
}

// Del 删除指定ID织入器实例
func (p *Pool) Del(id string) {
	p.weavers.Delete(id)
}

// Range calls f for every weaver in the pool until f returns false.
func (p *Pool) Range(f func(id string, w *engine.Weaver) bool) {
	p.weavers.Range(func(key, value any) bool {
		return f(key.(string), value.(*engine.Weaver))
	})
}

// New creates a weaver in the default pool.
func New(id string, opts ...engine.Option) (*engine.Weaver, error) {
	return DefaultPool.New(id, opts...)
}

// Get 获取默认池中指定ID织入器实例
func Get(id string) (*engine.Weaver, bool) {
	return DefaultPool.Get(id)
}

// Del 删除默认池中指定ID织入器实例
func Del(id string) {
	DefaultPool.Del(id)
}
