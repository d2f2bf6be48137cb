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
	"reflect"
	"strings"

	"github.com/rulego/weaver/api/types"
)

// TypeName returns the declaring type name of a Go type: the import path with '/' replaced
// by '.', followed by the type name. Pointer types are dereferenced.
// For example *github.com/acme/svc.EmployeeService becomes github.com.acme.svc.EmployeeService.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return strings.ReplaceAll(t.PkgPath(), "/", ".") + "." + t.Name()
}

// Signature returns the signature of a bound method value (receiver excluded).
func Signature(declaringType, method string, fn reflect.Type) types.MethodSignature {
	sig := types.MethodSignature{
		DeclaringType: declaringType,
		Method:        method,
	}
	for i := 0; i < fn.NumIn(); i++ {
		in := fn.In(i)
		if fn.IsVariadic() && i == fn.NumIn()-1 {
			sig.ParamTypes = append(sig.ParamTypes, "..."+in.Elem().String())
			continue
		}
		sig.ParamTypes = append(sig.ParamTypes, in.String())
	}
	for i := 0; i < fn.NumOut(); i++ {
		sig.ResultTypes = append(sig.ResultTypes, fn.Out(i).String())
	}
	return sig
}
