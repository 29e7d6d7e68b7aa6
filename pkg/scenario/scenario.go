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
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

const (
	DefaultTickInterval = "1s"
	DefaultDuration     = "10s"
)

// Scenario describes one simulation run. Durations are Go duration strings ("10s", "1m30s").
type Scenario struct {
	Name         string         `yaml:"name" json:"name"`
	TickInterval string         `yaml:"tick_interval" json:"tick_interval"`
	Duration     string         `yaml:"duration" json:"duration"`
	Vehicles     []VehicleSpec  `yaml:"vehicles" json:"vehicles"`
	Maneuvers    []ManeuverSpec `yaml:"maneuvers,omitempty" json:"maneuvers,omitempty"`
}

// VehicleSpec describes a vehicle. Position and Velocity may be left out, in which case a
// plane starts at Altitude with its default velocity and anything else starts at rest at the origin.
type VehicleSpec struct {
	Name     string    `yaml:"name" json:"name"`
	Variant  string    `yaml:"variant" json:"variant"`
	Position []float64 `yaml:"position,omitempty" json:"position,omitempty"`
	Velocity []float64 `yaml:"velocity,omitempty" json:"velocity,omitempty"`
	Altitude float64   `yaml:"altitude,omitempty" json:"altitude,omitempty"`
}

// ManeuverSpec changes a vehicle's velocity At a time offset from the start of the run.
type ManeuverSpec struct {
	At      string    `yaml:"at" json:"at"`
	Vehicle string    `yaml:"vehicle" json:"vehicle"`
	Set     []float64 `yaml:"set,omitempty" json:"set,omitempty"`
	Delta   []float64 `yaml:"delta,omitempty" json:"delta,omitempty"`
}

// Load reads a scenario from a YAML (or JSON) file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a scenario, fills in defaults and validates it. JSON is accepted as well,
// being a subset of YAML.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse scenario: %w", err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Scenario) applyDefaults() {
	if strings.TrimSpace(s.Name) == "" {
		s.Name = "unnamed"
	}
	if s.TickInterval == "" {
		s.TickInterval = DefaultTickInterval
	}
	if s.Duration == "" {
		s.Duration = DefaultDuration
	}
}

func (s *Scenario) Validate() error {
	tick, err := s.Tick()
	if err != nil {
		return err
	}
	if tick <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s: %w", tick, vehicle.ErrInvalidArgument)
	}

	runFor, err := s.RunFor()
	if err != nil {
		return err
	}
	if runFor < 0 {
		return fmt.Errorf("duration must not be negative, got %s: %w", runFor, vehicle.ErrInvalidArgument)
	}
	if runFor/tick > simulator.MaxTicks {
		return fmt.Errorf("duration %s at tick_interval %s is more than %d ticks: %w", runFor, tick, simulator.MaxTicks, vehicle.ErrInvalidArgument)
	}

	if len(s.Vehicles) == 0 {
		return fmt.Errorf("scenario '%s' has no vehicles: %w", s.Name, vehicle.ErrInvalidArgument)
	}

	names := make(map[string]bool, len(s.Vehicles))
	for i, v := range s.Vehicles {
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("vehicle #%d has no name: %w", i+1, vehicle.ErrInvalidArgument)
		}
		if names[v.Name] {
			return fmt.Errorf("vehicle '%s' is declared twice: %w", v.Name, vehicle.ErrInvalidArgument)
		}
		names[v.Name] = true

		if _, err := v.Build(); err != nil {
			return err
		}
	}

	for i, m := range s.Maneuvers {
		if !names[m.Vehicle] {
			return fmt.Errorf("maneuver #%d is for unknown vehicle '%s': %w", i+1, m.Vehicle, vehicle.ErrInvalidArgument)
		}
		if _, err := m.Event(time.Unix(0, 0)); err != nil {
			return fmt.Errorf("maneuver #%d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Scenario) Tick() (time.Duration, error) {
	return parseDuration("tick_interval", s.TickInterval)
}

func (s *Scenario) RunFor() (time.Duration, error) {
	return parseDuration("duration", s.Duration)
}

// Fleet builds every vehicle of the scenario, in declaration order.
func (s *Scenario) Fleet(opts ...vehicle.Option) (*simulator.Fleet, error) {
	fleet, err := simulator.NewFleet()
	if err != nil {
		return nil, err
	}

	for _, spec := range s.Vehicles {
		e, err := spec.Build(opts...)
		if err != nil {
			return nil, err
		}
		if err := fleet.Add(e); err != nil {
			return nil, err
		}
	}

	return fleet, nil
}

// Environment builds the fleet and an environment starting at startAt with every maneuver scheduled.
// Vehicles log through the logger carried by ctx.
func (s *Scenario) Environment(ctx context.Context, startAt time.Time) (simulator.Environment, error) {
	tick, err := s.Tick()
	if err != nil {
		return nil, err
	}
	runFor, err := s.RunFor()
	if err != nil {
		return nil, err
	}

	fleet, err := s.Fleet(vehicle.WithLogger(simulator.LoggerFrom(ctx).Named("vehicle")))
	if err != nil {
		return nil, err
	}

	env, err := simulator.NewEnvironment(ctx, fleet, startAt, runFor, tick)
	if err != nil {
		return nil, err
	}

	for _, m := range s.Maneuvers {
		ev, err := m.Event(startAt)
		if err != nil {
			return nil, err
		}
		env.Schedule(ev)
	}

	return env, nil
}

func (vs VehicleSpec) Build(opts ...vehicle.Option) (vehicle.Entity, error) {
	variant, err := vehicle.ParseVariant(vs.Variant)
	if err != nil {
		return nil, fmt.Errorf("vehicle '%s': %w", vs.Name, err)
	}

	name := vehicle.EntityName(vs.Name)
	if len(vs.Position) == 0 && len(vs.Velocity) == 0 {
		if variant == vehicle.Volumetric {
			return vehicle.NewPlane(name, vs.Altitude, opts...)
		}
		return vehicle.New(variant, name, opts...)
	}

	position := vs.Position
	if len(position) == 0 {
		position = make([]float64, variant.Dimensions())
	}
	velocity := vs.Velocity
	if len(velocity) == 0 {
		velocity = make([]float64, variant.Dimensions())
	}

	return vehicle.NewFromComponents(variant, name, position, velocity, opts...)
}

func (ms ManeuverSpec) Event(startAt time.Time) (*simulator.Event, error) {
	at, err := parseDuration("at", ms.At)
	if err != nil {
		return nil, err
	}
	if at < 0 {
		return nil, fmt.Errorf("maneuver of '%s' is at %s, before the start: %w", ms.Vehicle, at, vehicle.ErrInvalidArgument)
	}

	m := simulator.Maneuver{
		Vehicle: vehicle.EntityName(ms.Vehicle),
		Set:     ms.Set,
		Delta:   ms.Delta,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return simulator.NewManeuverEvent(startAt.Add(at), m), nil
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a duration: %w", field, value, vehicle.ErrInvalidArgument)
	}
	return d, nil
}
