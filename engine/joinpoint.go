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
	"github.com/rulego/weaver/api/types"
)

// joinPoint is the view of one call handed to advice handlers.
type joinPoint struct {
	d types.MethodDescriptor
}

func (jp *joinPoint) MethodName() string {
	return jp.d.Method
}

func (jp *joinPoint) DeclaringTypeName() string {
	return jp.d.DeclaringType
}

func (jp *joinPoint) Arguments() []interface{} {
	return jp.d.Arguments()
}

func (jp *joinPoint) Signature() types.MethodSignature {
	return jp.d.MethodSignature
}

func (jp *joinPoint) Descriptor() types.MethodDescriptor {
	return jp.d
}

func (jp *joinPoint) Target() interface{} {
	return jp.d.Target
}

func (jp *joinPoint) String() string {
	return "execution(" + jp.d.MethodSignature.String() + ")"
}

// proceedingJoinPoint is the join point of AROUND advice.
type proceedingJoinPoint struct {
	joinPoint
	proceed func() (interface{}, error)
}

func (pjp *proceedingJoinPoint) Proceed() (interface{}, error) {
	return pjp.proceed()
}
