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

package simulator

import (
	"fmt"
	"time"

	"vehicles/pkg/vehicle"
)

type EventKind string

const (
	StartEvent    EventKind = "start"
	TickEvent     EventKind = "tick"
	ManeuverEvent EventKind = "maneuver"
	HaltEvent     EventKind = "halt"
)

// priority orders events that occur at the same instant. Lower runs first.
// A tick at t covers the interval ending at t, so a maneuver at t only affects later ticks.
func (k EventKind) priority() int {
	switch k {
	case StartEvent:
		return 0
	case TickEvent:
		return 1
	case ManeuverEvent:
		return 2
	case HaltEvent:
		return 3
	default:
		panic(fmt.Errorf("unknown event kind '%s'", k))
	}
}

// Maneuver changes the velocity of one vehicle. Set replaces the velocity, Delta adds to it.
// Exactly one of them is non-empty.
type Maneuver struct {
	Vehicle vehicle.EntityName `json:"vehicle"`
	Set     []float64          `json:"set,omitempty"`
	Delta   []float64          `json:"delta,omitempty"`
}

func (m *Maneuver) Validate() error {
	if m == nil {
		return fmt.Errorf("maneuver event without a maneuver: %w", vehicle.ErrInvalidArgument)
	}
	if m.Vehicle == "" {
		return fmt.Errorf("maneuver needs a vehicle: %w", vehicle.ErrInvalidArgument)
	}
	if (len(m.Set) == 0) == (len(m.Delta) == 0) {
		return fmt.Errorf("maneuver of '%s' needs exactly one of set or delta: %w", m.Vehicle, vehicle.ErrInvalidArgument)
	}
	return nil
}

func (m *Maneuver) apply(e vehicle.Entity) error {
	if len(m.Delta) > 0 {
		return e.ChangeVelocity(m.Delta...)
	}

	if len(m.Set) != e.Variant().Dimensions() {
		return fmt.Errorf("%s '%s' takes %d velocity components, got %d: %w",
			e.Variant(), e.Name(), e.Variant().Dimensions(), len(m.Set), vehicle.ErrInvalidArgument)
	}

	// Roll back components already written if a later one is rejected.
	previous := e.Velocity()
	for i, value := range m.Set {
		if err := e.SetVelocityComponent(vehicle.Axis(i), value); err != nil {
			for j := 0; j < i; j++ {
				_ = e.SetVelocityComponent(vehicle.Axis(j), previous[j])
			}
			return err
		}
	}
	return nil
}

type Event struct {
	Kind     EventKind
	OccursAt time.Time
	Maneuver *Maneuver

	seq uint64
}

func (ev *Event) String() string {
	if ev.Maneuver != nil {
		return fmt.Sprintf("[%d] %s '%s'", ev.OccursAt.UnixNano(), ev.Kind, ev.Maneuver.Vehicle)
	}
	return fmt.Sprintf("[%d] %s", ev.OccursAt.UnixNano(), ev.Kind)
}

func NewManeuverEvent(occursAt time.Time, maneuver Maneuver) *Event {
	return &Event{
		Kind:     ManeuverEvent,
		OccursAt: occursAt,
		Maneuver: &maneuver,
	}
}

func newEvent(kind EventKind, occursAt time.Time) *Event {
	return &Event{
		Kind:     kind,
		OccursAt: occursAt,
	}
}

// CompletedEvent is an event the environment ran. Samples holds the state of every vehicle
// after a tick, or the state of the maneuvered vehicle after a maneuver.
type CompletedEvent struct {
	Event   *Event
	Samples []vehicle.State
}

type IgnoredEvent struct {
	Event  *Event
	Reason string
	Detail string
}
