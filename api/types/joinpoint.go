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

// JoinPoint is the view of the current call that is handed to advice handlers.
// It is local to one invocation and must not be retained after the handler returns.
type JoinPoint interface {
	// MethodName returns the name of the intercepted method.
	MethodName() string
	// DeclaringTypeName returns the qualified name of the target type.
	DeclaringTypeName() string
	// Arguments returns a read-only snapshot of the call arguments.
	Arguments() []any
	// Signature returns the static signature of the intercepted method.
	Signature() MethodSignature
	// Descriptor returns the method descriptor of the current call.
	Descriptor() MethodDescriptor
	// Target returns the target instance.
	Target() any
}

// ProceedingJoinPoint is the join point given to AROUND advice.
type ProceedingJoinPoint interface {
	JoinPoint
	// Proceed runs the rest of the chain and the target method with the original arguments
	// and returns its result or error. It may be called any number of times.
	Proceed() (any, error)
}

// BeforeFunc handles BEFORE advice.
type BeforeFunc func(jp JoinPoint) error

// AfterReturningFunc handles AFTER_RETURNING advice.
type AfterReturningFunc func(jp JoinPoint, result any) error

// AfterThrowingFunc handles AFTER_THROWING advice.
type AfterThrowingFunc func(jp JoinPoint, err error) error

// AfterFunc handles AFTER_FINALLY advice.
type AfterFunc func(jp JoinPoint) error

// AroundFunc handles AROUND advice.
type AroundFunc func(pjp ProceedingJoinPoint) (any, error)
