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
	"reflect"
	"sort"
	"sync"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/utils/maps"
)

// ErrAspectNotFound is returned when no aspect is registered for a type.
var ErrAspectNotFound = errors.New("aspect type not found")

// Registry is the default registry of the built-in aspects.
// Registry 默认的内置切面注册器
var Registry = NewAspectRegistry()

func init() {
	Registry.Register(&Debug{})
	Registry.Register(&MetricsAspect{})
	Registry.Register(&ConcurrencyLimiterAspect{})
	Registry.Register(&SkipFallbackAspect{})
	Registry.Register(&ScriptAspect{})
}

// AspectRegistry creates aspects by type name.
// AspectRegistry 切面注册器，通过类型创建切面
type AspectRegistry struct {
	aspects map[string]types.TypedAspect
	lock    sync.RWMutex
}

func NewAspectRegistry() *AspectRegistry {
	return &AspectRegistry{aspects: make(map[string]types.TypedAspect)}
}

// Register adds an aspect prototype, replacing the prototype of the same type.
func (r *AspectRegistry) Register(aspect types.TypedAspect) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.aspects[aspect.Type()] = aspect
}

// Unregister removes the prototype of the type.
func (r *AspectRegistry) Unregister(aspectType string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.aspects, aspectType)
}

// Types returns the registered aspect types, sorted.
func (r *AspectRegistry) Types() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var list []string
	for k := range r.aspects {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}

// New creates a zero aspect of the given type and decodes configuration into its exported
// fields. Duration fields accept strings such as "10s". Defaults are applied when the
// weaver registers the aspect.
// New 创建指定类型的切面，配置通过 mapstructure 转换到切面的导出字段
func (r *AspectRegistry) New(aspectType string, configuration map[string]interface{}) (types.Aspect, error) {
	r.lock.RLock()
	prototype, ok := r.aspects[aspectType]
	r.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAspectNotFound, aspectType)
	}
	var instance types.Aspect
	if t := reflect.TypeOf(prototype); t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		instance = reflect.New(t.Elem()).Interface().(types.Aspect)
	} else {
		instance = prototype.New()
	}
	if len(configuration) > 0 {
		if err := maps.Map2Struct(configuration, instance); err != nil {
			return nil, fmt.Errorf("aspect %s: %w", aspectType, err)
		}
	}
	return instance, nil
}
