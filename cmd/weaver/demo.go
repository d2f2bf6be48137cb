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
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/examples/employee"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDemoCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the employee service scenarios",
		Long:  "Weave the employee aspect around the employee service and call a void method, a method returning a value and a failing method.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, flush, err := newLogger(v.GetBool("debug"))
			if err != nil {
				return err
			}
			defer flush()
			aspects, err := buildAspects(v, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, service, err := employee.Weave(out, engine.NewConfig(types.WithLogger(logger)), aspects...)
			if err != nil {
				return err
			}
			return employee.Run(out, service)
		},
	}
	cmd.Flags().String("aspects", "", "Comma separated built-in aspects to weave in addition, e.g. debug,metrics")
	aspectDefaults(v)
	return cmd
}
