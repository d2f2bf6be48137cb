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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/endpoint/rest"
	"github.com/rulego/weaver/endpoint/websocket"
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/examples/employee"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the employee service over REST and websocket",
		Long: `Serve the woven employee service over REST and websocket. Every flag can also be set with a WEAVER_ environment
variable, e.g. WEAVER_ADDR=:8080.`,
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
			w, _, err := employee.Weave(cmd.OutOrStdout(), engine.NewConfig(types.WithLogger(logger)), aspects...)
			if err != nil {
				return err
			}
			server := rest.New(rest.Config{
				Addr:        v.GetString("addr"),
				CertFile:    v.GetString("cert-file"),
				CertKeyFile: v.GetString("cert-key-file"),
			}, w, logger)
			ws := websocket.New(w, logger)
			ws.Mount(server.Router(), "")

			// Handle Ctrl+C gracefully
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				if _, ok := <-sigChan; ok {
					logger.Printf("shutting down server")
					if err := server.Stop(v.GetDuration("shutdown-timeout")); err != nil {
						logger.Printf("shutdown error: %v", err)
					}
					ws.Close()
				}
			}()
			return server.Start()
		},
	}
	cmd.Flags().String("addr", rest.DefaultAddr, "Address to listen on")
	cmd.Flags().String("aspects", "", "Comma separated built-in aspects, e.g. debug,metrics")
	cmd.Flags().String("cert-file", "", "TLS certificate file")
	cmd.Flags().String("cert-key-file", "", "TLS key file")
	cmd.Flags().Duration("shutdown-timeout", 5*time.Second, "Time to wait for running requests on shutdown")
	aspectDefaults(v)
	return cmd
}
