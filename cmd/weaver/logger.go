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

package main

import (
	"github.com/rulego/weaver/api/types"
	"go.uber.org/zap"
)

// zapLogger adapts a sugared zap logger to types.Logger
type zapLogger struct {
	logger *zap.SugaredLogger
}

var _ types.Logger = (*zapLogger)(nil)

func (l *zapLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

// newLogger creates the logger of the command, development mode prints human readable lines.
func newLogger(debug bool) (*zapLogger, func(), error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	return &zapLogger{logger: logger.Sugar()}, func() { _ = logger.Sync() }, nil
}
