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
	"strings"

	"github.com/expr-lang/expr/vm"
	"github.com/rulego/weaver/api/types"
)

const (
	precOr = iota + 1
	precAnd
	precUnary
)

type node interface {
	static(sig types.MethodSignature) Result
	match(d types.MethodDescriptor) bool
	dynamic() bool
	prec() int
	write(b *strings.Builder)
}

func writeOperand(b *strings.Builder, n node, prec int) {
	if n.prec() < prec {
		b.WriteByte('(')
		n.write(b)
		b.WriteByte(')')
		return
	}
	n.write(b)
}

type andNode struct {
	left, right node
}

func (n *andNode) static(sig types.MethodSignature) Result {
	l := n.left.static(sig)
	if l == No {
		return No
	}
	r := n.right.static(sig)
	if r < l {
		return r
	}
	return l
}

func (n *andNode) match(d types.MethodDescriptor) bool {
	return n.left.match(d) && n.right.match(d)
}

func (n *andNode) dynamic() bool {
	return n.left.dynamic() || n.right.dynamic()
}

func (n *andNode) prec() int { return precAnd }

func (n *andNode) write(b *strings.Builder) {
	writeOperand(b, n.left, precAnd)
	b.WriteString(" && ")
	writeOperand(b, n.right, precAnd+1)
}

type orNode struct {
	left, right node
}

func (n *orNode) static(sig types.MethodSignature) Result {
	l := n.left.static(sig)
	if l == Yes {
		return Yes
	}
	r := n.right.static(sig)
	if r > l {
		return r
	}
	return l
}

func (n *orNode) match(d types.MethodDescriptor) bool {
	return n.left.match(d) || n.right.match(d)
}

func (n *orNode) dynamic() bool {
	return n.left.dynamic() || n.right.dynamic()
}

func (n *orNode) prec() int { return precOr }

func (n *orNode) write(b *strings.Builder) {
	writeOperand(b, n.left, precOr)
	b.WriteString(" || ")
	writeOperand(b, n.right, precOr+1)
}

type notNode struct {
	x node
}

func (n *notNode) static(sig types.MethodSignature) Result {
	return Yes - n.x.static(sig)
}

func (n *notNode) match(d types.MethodDescriptor) bool {
	return !n.x.match(d)
}

func (n *notNode) dynamic() bool {
	return n.x.dynamic()
}

func (n *notNode) prec() int { return precUnary }

func (n *notNode) write(b *strings.Builder) {
	b.WriteByte('!')
	writeOperand(b, n.x, precUnary)
}

// executionNode is execution(ret type.method(params)).
type executionNode struct {
	ret    returnPattern
	typ    namePattern
	method string
	params typeList
}

func (n *executionNode) matches(sig types.MethodSignature) bool {
	return glob(n.method, sig.Method) &&
		n.typ.match(sig.DeclaringType) &&
		n.params.match(sig.ParamTypes) &&
		n.ret.match(sig.ResultTypes)
}

func (n *executionNode) static(sig types.MethodSignature) Result {
	if n.matches(sig) {
		return Yes
	}
	return No
}

func (n *executionNode) match(d types.MethodDescriptor) bool {
	return n.matches(d.MethodSignature)
}

func (n *executionNode) dynamic() bool { return false }

func (n *executionNode) prec() int { return precUnary }

func (n *executionNode) write(b *strings.Builder) {
	b.WriteString("execution(")
	n.ret.write(b)
	b.WriteByte(' ')
	if len(n.typ.segments) > 0 {
		n.typ.write(b)
		if last := n.typ.segments[len(n.typ.segments)-1]; !last.dotdot {
			b.WriteByte('.')
		}
	}
	b.WriteString(n.method)
	b.WriteByte('(')
	n.params.write(b)
	b.WriteString("))")
}

// withinNode is within(type).
type withinNode struct {
	typ namePattern
}

func (n *withinNode) static(sig types.MethodSignature) Result {
	if n.typ.match(sig.DeclaringType) {
		return Yes
	}
	return No
}

func (n *withinNode) match(d types.MethodDescriptor) bool {
	return n.typ.match(d.DeclaringType)
}

func (n *withinNode) dynamic() bool { return false }

func (n *withinNode) prec() int { return precUnary }

func (n *withinNode) write(b *strings.Builder) {
	b.WriteString("within(")
	n.typ.write(b)
	b.WriteByte(')')
}

// argsNode is args(params), matched against the declared parameter types.
type argsNode struct {
	params typeList
}

func (n *argsNode) static(sig types.MethodSignature) Result {
	if n.params.match(sig.ParamTypes) {
		return Yes
	}
	return No
}

func (n *argsNode) match(d types.MethodDescriptor) bool {
	return n.params.match(d.ParamTypes)
}

func (n *argsNode) dynamic() bool { return false }

func (n *argsNode) prec() int { return precUnary }

func (n *argsNode) write(b *strings.Builder) {
	b.WriteString("args(")
	n.params.write(b)
	b.WriteByte(')')
}

// ifNode is if(expr), an expr-lang condition evaluated per call.
type ifNode struct {
	source  string
	program *vm.Program
}

func (n *ifNode) static(types.MethodSignature) Result {
	return Maybe
}

func (n *ifNode) match(d types.MethodDescriptor) bool {
	return evalCondition(n.program, d)
}

func (n *ifNode) dynamic() bool { return true }

func (n *ifNode) prec() int { return precUnary }

func (n *ifNode) write(b *strings.Builder) {
	b.WriteString("if(")
	b.WriteString(n.source)
	b.WriteByte(')')
}

// refNode is name(), a reference to a named pointcut.
type refNode struct {
	name   string
	target *Pointcut
}

func (n *refNode) static(sig types.MethodSignature) Result {
	return n.target.root.static(sig)
}

func (n *refNode) match(d types.MethodDescriptor) bool {
	return n.target.root.match(d)
}

func (n *refNode) dynamic() bool {
	return n.target.root.dynamic()
}

func (n *refNode) prec() int { return precUnary }

func (n *refNode) write(b *strings.Builder) {
	b.WriteString(n.name)
	b.WriteString("()")
}
