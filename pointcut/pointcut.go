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

// Package pointcut compiles pointcut expressions into predicates over method signatures.
//
// The expression language is a subset of the AspectJ pointcut language:
//
//	execution(* com.example.service.*.*(..))
//	execution(error com.example..*Service.Delete*(string, ..)) && !within(com.example.internal..)
//	execution(* *(..)) && if(len(args) > 0 && args[0] == "EMP101")
//	serviceMethods() || args(context.Context, ..)
//
// Supported designators are execution, within, args and if. if(...) holds an expr-lang boolean
// expression evaluated per call over the variables id, method, declaringType, args and target;
// a pointcut containing it is dynamic. name() references a pointcut defined earlier and resolved
// through a Resolver.
package pointcut

import (
	"fmt"
	"strings"

	"github.com/rulego/weaver/api/types"
)

// Result is the outcome of matching a pointcut against a static method signature.
type Result int

const (
	// No means the pointcut never matches the method.
	No Result = iota
	// Maybe means the pointcut can only be decided per call.
	Maybe
	// Yes means the pointcut matches every call of the method.
	Yes
)

func (r Result) String() string {
	switch r {
	case No:
		return "No"
	case Maybe:
		return "Maybe"
	default:
		return "Yes"
	}
}

// Resolver looks up a named pointcut.
type Resolver func(name string) (*Pointcut, bool)

// Pointcut is a compiled pointcut expression. It is immutable and safe for concurrent use.
type Pointcut struct {
	source string
	root   node
}

// Compile parses expr. Named pointcut references are resolved with resolver, which may be nil.
// A declaring type written as a lone "*" matches every declaring type, whatever its number of
// segments; within a longer pattern "*" matches exactly one segment.
func Compile(expr string, resolver Resolver) (*Pointcut, error) {
	p := &parser{src: expr, resolver: resolver}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Pointcut{source: expr, root: root}, nil
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
func MustCompile(expr string) *Pointcut {
	pc, err := Compile(expr, nil)
	if err != nil {
		panic(err)
	}
	return pc
}

// Source returns the expression the pointcut was compiled from.
func (p *Pointcut) Source() string {
	return p.source
}

// String returns the canonical form of the expression.
func (p *Pointcut) String() string {
	var b strings.Builder
	p.root.write(&b)
	return b.String()
}

// StaticMatch decides the pointcut for a method signature without a call.
func (p *Pointcut) StaticMatch(sig types.MethodSignature) Result {
	return p.root.static(sig)
}

// Matches evaluates the pointcut for one call.
func (p *Pointcut) Matches(d types.MethodDescriptor) bool {
	return p.root.match(d)
}

// IsDynamic reports whether the pointcut needs the call arguments to be decided.
func (p *Pointcut) IsDynamic() bool {
	return p.root.dynamic()
}

// Error is a pointcut compilation error. Kind is types.ErrPointcutSyntax or
// types.ErrPointcutUnsupportedDesignator.
type Error struct {
	Kind error
	Expr string
	// Pos is the byte offset in Expr where the problem was found
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at position %d: %s in %q", e.Kind, e.Pos, e.Msg, e.Expr)
}

func (e *Error) Unwrap() error {
	return e.Kind
}
