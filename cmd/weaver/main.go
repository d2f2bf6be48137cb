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

// Command weaver runs the employee demo, serves woven targets over REST and generates
// typed proxies.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - will be set at build time
	Version = "dev"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "weaver",
		Short:         "Method interception for Go",
		Long:          `weaver weaves advices around the methods of Go values selected by pointcut expressions.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("debug", false, "Log in development mode")
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	v.SetEnvPrefix("weaver")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Add subcommands
	rootCmd.AddCommand(newDemoCmd(v))
	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newGenCmd())
	return rootCmd
}
