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

package types

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// MethodSignature is the static identity of a target method.
type MethodSignature struct {
	// DeclaringType is the qualified name of the target type, e.g. com.example.service.EmployeeService
	DeclaringType string
	// Method is the method name
	Method string
	// ParamTypes are the Go type names of the parameters, e.g. string, context.Context, ...int
	ParamTypes []string
	// ResultTypes are the Go type names of the results, including a trailing error
	ResultTypes []string
}

// ReturnType renders the result list the way Go prints it: "" for no result,
// "T" for a single result and "(T1, T2)" otherwise.
func (s MethodSignature) ReturnType() string {
	switch len(s.ResultTypes) {
	case 0:
		return ""
	case 1:
		return s.ResultTypes[0]
	default:
		return "(" + strings.Join(s.ResultTypes, ", ") + ")"
	}
}

// Key identifies the signature inside a chain cache.
func (s MethodSignature) Key() string {
	return s.DeclaringType + "." + s.Method + "(" + strings.Join(s.ParamTypes, ",") + ")"
}

func (s MethodSignature) String() string {
	var b strings.Builder
	if ret := s.ReturnType(); ret != "" {
		b.WriteString(ret)
		b.WriteByte(' ')
	}
	b.WriteString(s.DeclaringType)
	b.WriteByte('.')
	b.WriteString(s.Method)
	b.WriteByte('(')
	b.WriteString(strings.Join(s.ParamTypes, ", "))
	b.WriteByte(')')
	return b.String()
}

// MethodDescriptor is the reified identity of one call: the signature, the target instance and
// the argument values of the call. A descriptor is created per invocation (and per proceed) and
// must not be modified once created.
type MethodDescriptor struct {
	// Id is unique per descriptor
	Id string
	MethodSignature
	Target any
	Args   []any
}

// NewMethodDescriptor creates a descriptor with a new UUID. The argument slice is copied.
func NewMethodDescriptor(sig MethodSignature, target any, args []any) MethodDescriptor {
	uuId, _ := uuid.NewV4()
	return MethodDescriptor{
		Id:              uuId.String(),
		MethodSignature: sig,
		Target:          target,
		Args:            copyArgs(args),
	}
}

// Arguments returns a copy of the argument values.
func (d MethodDescriptor) Arguments() []any {
	return copyArgs(d.Args)
}

func copyArgs(args []any) []any {
	if args == nil {
		return nil
	}
	out := make([]any, len(args))
	copy(out, args)
	return out
}
