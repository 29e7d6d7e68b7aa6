/*
 * Copyright (C) 2019-Present Pivotal Software, Inc. All rights reserved.
 *
 * This program and the accompanying materials are made available under the terms
 * of the Apache License, Version 2.0 (the "License”); you may not use this file
 * except in compliance with the License. You may obtain a copy of the License at:
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed
 * under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
 * CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vehicles/pkg/data"
	"vehicles/pkg/scenario"
	"vehicles/pkg/serve"
)

const origin = "vehicles_cli"

var au = aurora.NewAurora(true)

type options struct {
	verbose      bool
	noColor      bool
	scenarioPath string
	storePath    string
	showTrace    bool
	addr         string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "vehicles",
		Short:        "Simulate cars, boats and planes moving at constant velocity",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			au = aurora.NewAurora(!opts.noColor)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCmd(opts), newServeCmd(opts))
	return root
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario and print what happened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(opts.scenarioPath)
			if err != nil {
				return err
			}

			r := NewRunner(sc, logLevel(opts.verbose))
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Running %s ... ", au.Bold(sc.Name))
			outcome, err := r.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("there was an error during simulation: %w", err)
			}

			if opts.storePath != "" {
				runID, err := storeOutcome(opts.storePath, outcome)
				if err != nil {
					return fmt.Errorf("there was an error saving data: %w", err)
				}
				fmt.Fprintf(out, "#%s ", au.Bold(runID))
			}

			if opts.showTrace {
				return r.Report(outcome, out)
			}
			fmt.Fprintln(out, au.Bold("Done."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "Scenario file (YAML or JSON); the built-in scenario when empty")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "Store the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.showTrace, "trace", true, "Show simulation trace")

	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenario runs over HTTP and websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(logLevel(opts.verbose))
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("could not build logger: %w", err)
			}
			defer logger.Sync()

			vs := &serve.VehiclesServer{
				Addr:   opts.addr,
				Logger: logger.Named("vehicles").Sugar(),
			}

			if opts.storePath != "" {
				conn, err := sqlite3.Open(opts.storePath)
				if err != nil {
					return fmt.Errorf("could not open store: %w", err)
				}
				defer conn.Close()
				vs.Store = data.NewRunStore(conn)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := vs.Serve()
			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			return vs.Shutdown()
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", serve.DefaultAddr, "Address to listen on")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "Store every run in this SQLite database")

	return cmd
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(path)
}

func storeOutcome(path string, outcome *scenario.Outcome) (string, error) {
	conn, err := sqlite3.Open(path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	runID, err := data.NewRunStore(conn).Store(outcome.Record(origin))
	if err != nil {
		return "", err
	}
	return runID.String(), nil
}

func logLevel(verbose bool) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
