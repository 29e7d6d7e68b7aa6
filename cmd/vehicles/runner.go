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
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vehicles/pkg/scenario"
	"vehicles/pkg/simulator"
)

var startAt = time.Unix(0, 0)

type Runner interface {
	Scenario() *scenario.Scenario
	Run(ctx context.Context) (*scenario.Outcome, error)
	Report(outcome *scenario.Outcome, writer io.Writer) error
}

type runner struct {
	scenario     *scenario.Scenario
	logger       *zap.SugaredLogger
	logbuf       *bytes.Buffer
	startRunning time.Time
}

func (r *runner) Scenario() *scenario.Scenario {
	return r.scenario
}

func (r *runner) Run(ctx context.Context) (*scenario.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.startRunning = time.Now()
	return r.scenario.Run(simulator.WithLogger(ctx, r.logger), startAt)
}

func (r *runner) Report(outcome *scenario.Outcome, writer io.Writer) error {
	fmt.Fprintf(writer,
		"%5s      %16s %-8d  %17s %-8d  %20s %-10s    %20s %-12s\n\n",
		au.Bold("Done."),
		au.BgGreen("Completed events"),
		au.Bold(len(outcome.Completed)),
		au.BgBrown("Ignored events"),
		au.Bold(len(outcome.Ignored)),
		au.Cyan("Running time:"),
		time.Since(r.startRunning).String(),
		au.Cyan("Simulated time:"),
		outcome.HaltAt.Sub(outcome.StartAt).String(),
	)

	printer := message.NewPrinter(language.AmericanEnglish)
	fmt.Fprintln(writer, au.BgGreen(fmt.Sprintf("%20s  %-10s %-14s %-30s %-30s", "Time (ns)", "Event", "Vehicle", "Position", "Velocity")).Bold())

	for _, c := range outcome.Completed {
		if len(c.Samples) == 0 {
			fmt.Fprintln(writer, printer.Sprintf("%20d  %-10s %-14s %-30s %-30s", c.Event.OccursAt.UnixNano(), c.Event.Kind, "-", "", ""))
			continue
		}

		for _, st := range c.Samples {
			fmt.Fprintln(writer, printer.Sprintf(
				"%20d  %-10s %-14s %-30s %-30s",
				c.Event.OccursAt.UnixNano(),
				c.Event.Kind,
				st.Name,
				formatVector(st.Position),
				formatVector(st.Velocity),
			))
		}
	}

	fmt.Fprint(writer, "\n")
	fmt.Fprintln(writer, au.BgBrown(fmt.Sprintf("%20s  %-10s %-14s %-28s %-50s", "Time (ns)", "Event", "Vehicle", "Reason Ignored", "Detail")).Bold())
	for _, i := range outcome.Ignored {
		name := "-"
		if i.Event.Maneuver != nil {
			name = string(i.Event.Maneuver.Vehicle)
		}

		coloredReason := i.Reason
		switch i.Reason {
		case simulator.OccursInPast:
			coloredReason = au.Red(i.Reason).String()
		case simulator.OccursAfterHalt:
			coloredReason = au.Magenta(i.Reason).String()
		case simulator.ManeuverRejected:
			coloredReason = au.Brown(i.Reason).String()
		case simulator.UnknownVehicle:
			coloredReason = au.Cyan(i.Reason).String()
		}

		fmt.Fprintln(writer, printer.Sprintf(
			"%20d  %-10s %-14s %-28s %s",
			i.Event.OccursAt.UnixNano(),
			i.Event.Kind,
			name,
			coloredReason,
			i.Detail,
		))
	}

	fmt.Fprint(writer, "\n")
	fmt.Fprintln(writer, au.Bold(fmt.Sprintf("%-80s", "          Final positions")).BgGreen())
	for _, e := range outcome.Fleet.Entities() {
		fmt.Fprintln(writer, e.String())
	}

	fmt.Fprint(writer, "\n")
	fmt.Fprintln(writer, au.Bold(fmt.Sprintf("%-80s", "          Log output from the simulation")).BgBlue())
	fmt.Fprintln(writer, r.logbuf.String())

	return nil
}

func formatVector(components []float64) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = fmt.Sprintf("%.2f", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewRunner prepares sc to run with log output captured for the report.
func NewRunner(sc *scenario.Scenario, level zapcore.Level) Runner {
	buf := new(bytes.Buffer)

	return &runner{
		scenario: sc,
		logger:   newLogger(buf, level),
		logbuf:   buf,
	}
}

func newLogger(buf io.Writer, level zapcore.Level) *zap.SugaredLogger {
	sink := zapcore.AddSync(buf)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		sink,
		level,
	)

	unsugaredLogger := zap.New(core)

	return unsugaredLogger.Named("vehicles").Sugar()
}
