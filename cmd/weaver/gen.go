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
	"fmt"
	"os"
	"path/filepath"

	"github.com/rulego/weaver/internal/gen"
	"github.com/spf13/cobra"
)

func newGenCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "gen <file.go> [interface...]",
		Short: "Generate typed proxies",
		Long:  "Generate typed proxies for the interfaces declared in a Go file, all exported interfaces if none is named.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			code, err := gen.Generate(src, gen.Config{Filename: args[0], Interfaces: args[1:]})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(code)
				return err
			}
			if !filepath.IsAbs(output) {
				output = filepath.Join(filepath.Dir(args[0]), output)
			}
			if err := os.WriteFile(output, code, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, relative to the directory of the source file; stdout if empty")
	return cmd
}
