/*
 * Copyright 2024 The RuleGo Authors.
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

// Package runtime provides stack capture for recovered panics.
//
// Usage example:
//
//	defer func() {
//		if e := recover(); e != nil {
//			logger.Printf("panic: %v\n%s", e, runtime.Stack())
//		}
//	}()
package runtime

import (
	"fmt"
	"runtime"
	"strings"
)

// maxDepth is the maximum number of frames captured
const maxDepth = 32

// Stack 获取堆栈信息, returns the stack of the calling goroutine without the frames of Stack and its caller.
func Stack() string {
	return StackSkip(2)
}

// StackSkip returns the stack of the calling goroutine, skipping skip frames above the caller of StackSkip.
func StackSkip(skip int) string {
	var pc = make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	frames := runtime.CallersFrames(pc[:n])

	var build strings.Builder
	for {
		frame, more := frames.Next()
		build.WriteString(fmt.Sprintf(" %s\n   %s:%d \n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return build.String()
}
