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

package pointcut

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/weaver/api/types"
)

// Variables visible to if(...) conditions.
const (
	IdKey            = "id"
	MethodKey        = "method"
	DeclaringTypeKey = "declaringType"
	ArgsKey          = "args"
	TargetKey        = "target"
)

func compileCondition(source string) (*vm.Program, error) {
	return expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
}

func conditionEnv(d types.MethodDescriptor) map[string]interface{} {
	return map[string]interface{}{
		IdKey:            d.Id,
		MethodKey:        d.Method,
		DeclaringTypeKey: d.DeclaringType,
		ArgsKey:          d.Args,
		TargetKey:        d.Target,
	}
}

// evalCondition runs a compiled condition. A failing evaluation counts as no match.
func evalCondition(program *vm.Program, d types.MethodDescriptor) bool {
	out, err := vm.Run(program, conditionEnv(d))
	if err != nil {
		return false
	}
	result, ok := out.(bool)
	return ok && result
}
