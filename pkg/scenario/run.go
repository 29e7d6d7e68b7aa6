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

package scenario

import (
	"context"
	"time"

	"vehicles/pkg/data"
	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

// Outcome is what happened during one run of a scenario.
type Outcome struct {
	Scenario     *Scenario
	StartAt      time.Time
	HaltAt       time.Time
	TickInterval time.Duration
	Fleet        *simulator.Fleet
	Initial      []vehicle.State
	Final        []vehicle.State
	Completed    []simulator.CompletedEvent
	Ignored      []simulator.IgnoredEvent
}

// Run builds the environment, registers listeners and runs it to completion.
// A partial outcome is returned alongside any error.
func (s *Scenario) Run(ctx context.Context, startAt time.Time, listeners ...simulator.TickListener) (*Outcome, error) {
	env, err := s.Environment(ctx, startAt)
	if err != nil {
		return nil, err
	}
	for _, l := range listeners {
		env.AddTickListener(l)
	}

	out := &Outcome{
		Scenario:     s,
		StartAt:      startAt,
		HaltAt:       env.HaltTime(),
		TickInterval: env.TickInterval(),
		Fleet:        env.Fleet(),
		Initial:      env.Fleet().Snapshot(),
	}

	out.Completed, out.Ignored, err = env.Run()
	out.Final = env.Fleet().Snapshot()

	return out, err
}

// Samples flattens the vehicle states recorded at each tick, in time order.
func (o *Outcome) Samples() []vehicle.State {
	samples := make([]vehicle.State, 0)
	for _, ce := range o.Completed {
		if ce.Event.Kind == simulator.TickEvent {
			samples = append(samples, ce.Samples...)
		}
	}
	return samples
}

// Record converts the outcome into something a data.RunStore can persist.
func (o *Outcome) Record(origin string) data.Run {
	return data.Run{
		Scenario:     o.Scenario.Name,
		Origin:       origin,
		TickInterval: o.TickInterval,
		RanFor:       o.HaltAt.Sub(o.StartAt),
		Vehicles:     o.Initial,
		Completed:    o.Completed,
		Ignored:      o.Ignored,
	}
}
