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
	"errors"
	"fmt"
)

var (
	// ErrPointcutSyntax is returned when a pointcut expression cannot be parsed.
	ErrPointcutSyntax = errors.New("pointcut syntax error")
	// ErrPointcutUnsupportedDesignator is returned when a pointcut uses an unknown designator.
	ErrPointcutUnsupportedDesignator = errors.New("unsupported pointcut designator")
	// ErrRegistryFrozen is returned when the advisor registry is modified after it was frozen.
	ErrRegistryFrozen = errors.New("advisor registry is frozen")
	// ErrNoSuchTargetMethod is returned when a proxy is asked for a method the target does not implement.
	ErrNoSuchTargetMethod = errors.New("no such target method")
	// ErrAdviceHandlerFailure is matched by every error raised by an advice handler.
	ErrAdviceHandlerFailure = errors.New("advice handler failure")
	// ErrInvalidArguments is returned when the arguments of a proxy call do not fit the target method.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrInvalidAdviceHandler is returned when a handler does not fit the advice kind.
	ErrInvalidAdviceHandler = errors.New("invalid advice handler")
	// ErrInvalidTarget is returned when a target cannot be proxied.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrTargetExists is returned when a target name is registered twice.
	ErrTargetExists = errors.New("target already registered")
	// ErrConcurrencyLimitReached is returned by the concurrency limiter aspect.
	ErrConcurrencyLimitReached = errors.New("concurrency limit reached")
)

// AdviceError wraps an error raised by an advice handler, identifying the advice and the phase.
type AdviceError struct {
	// Advice is the name of the advice that failed
	Advice string
	// Kind is the phase in which the handler failed
	Kind AdviceKind
	// Err is the error raised by the handler
	Err error
	// Suppressed is the error this one replaced, if any
	Suppressed error
}

func (e *AdviceError) Error() string {
	msg := fmt.Sprintf("advice %s (%s) failed: %v", e.Advice, e.Kind, e.Err)
	if e.Suppressed != nil {
		msg += fmt.Sprintf(" (suppressed: %v)", e.Suppressed)
	}
	return msg
}

func (e *AdviceError) Unwrap() error {
	return e.Err
}

// Is reports ErrAdviceHandlerFailure as a match so callers can test the taxonomy without errors.As.
func (e *AdviceError) Is(target error) bool {
	return target == ErrAdviceHandlerFailure
}

// PanicError is a recovered panic turned into an error.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
