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
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"vehicles/pkg/vehicle"
)

const (
	OccursInPast     = "ScheduledToOccurInPast"
	OccursAfterHalt  = "ScheduledToOccurAfterHalt"
	ManeuverRejected = "ManeuverRejected"
	UnknownVehicle   = "ManeuverForUnknownVehicle"
)

// MaxTicks bounds how many ticks one environment schedules up front.
const MaxTicks = 100000

const (
	stateStarting = "starting"
	stateRunning  = "running"
	stateHalted   = "halted"
)

// TickListener is told about the state of every vehicle after each tick.
type TickListener interface {
	OnTick(at time.Time, samples []vehicle.State) error
}

type Environment interface {
	Fleet() *Fleet
	Schedule(event *Event) (scheduled bool)
	AddTickListener(listener TickListener)
	Run() (completed []CompletedEvent, ignored []IgnoredEvent, err error)
	CurrentTime() time.Time
	HaltTime() time.Time
	TickInterval() time.Duration
	State() string
	Context() context.Context
}

type environment struct {
	ctx          context.Context
	logger       *zap.SugaredLogger
	fleet        *Fleet
	current      time.Time
	haltAt       time.Time
	tickInterval time.Duration

	queue     EventPriorityQueue
	lifecycle *fsm.FSM
	listeners []TickListener

	completed []CompletedEvent
	ignored   []IgnoredEvent
}

func (env *environment) Fleet() *Fleet {
	return env.fleet
}

func (env *environment) Schedule(event *Event) (scheduled bool) {
	switch {
	case env.lifecycle.Current() == stateHalted || env.queue.IsClosed():
		env.ignore(event, OccursAfterHalt, fmt.Sprintf("environment halted at %d", env.current.UnixNano()))
		return false
	case event.OccursAt.Before(env.current):
		env.ignore(event, OccursInPast, fmt.Sprintf("current time is %d", env.current.UnixNano()))
		return false
	case event.OccursAt.After(env.haltAt):
		env.ignore(event, OccursAfterHalt, fmt.Sprintf("halts at %d", env.haltAt.UnixNano()))
		return false
	}

	if event.Kind == ManeuverEvent {
		if err := event.Maneuver.Validate(); err != nil {
			env.ignore(event, ManeuverRejected, err.Error())
			return false
		}
	}

	if err := env.queue.EnqueueEvent(event); err != nil {
		panic(fmt.Errorf("could not add '%s' to future events: %s", event, err.Error()))
	}
	return true
}

func (env *environment) AddTickListener(listener TickListener) {
	env.listeners = append(env.listeners, listener)
}

// Run processes events in time order until the halt event, then returns everything that
// happened. A maneuver that fails is recorded as ignored and the run carries on.
func (env *environment) Run() (completed []CompletedEvent, ignored []IgnoredEvent, err error) {
	if env.lifecycle.Current() != stateStarting {
		return env.completed, env.ignored, fmt.Errorf("cannot run an environment that is %s", env.lifecycle.Current())
	}

	for {
		if err := env.ctx.Err(); err != nil {
			env.abort(err)
			return env.completed, env.ignored, err
		}

		ev, err, closed := env.queue.DequeueEvent()
		if closed {
			break
		}
		if err != nil {
			env.abort(err)
			return env.completed, env.ignored, err
		}

		env.current = ev.OccursAt

		switch ev.Kind {
		case StartEvent:
			err = env.transition("start", ev)
		case TickEvent:
			err = env.tick(ev)
		case ManeuverEvent:
			env.maneuver(ev)
		case HaltEvent:
			err = env.transition("halt", ev)
			env.queue.Close()
		}

		if err != nil {
			env.abort(err)
			return env.completed, env.ignored, err
		}
	}

	return env.completed, env.ignored, nil
}

func (env *environment) CurrentTime() time.Time {
	return env.current
}

func (env *environment) HaltTime() time.Time {
	return env.haltAt
}

func (env *environment) TickInterval() time.Duration {
	return env.tickInterval
}

func (env *environment) State() string {
	return env.lifecycle.Current()
}

func (env *environment) Context() context.Context {
	return env.ctx
}

func (env *environment) transition(name string, ev *Event) error {
	if err := env.lifecycle.Event(name); err != nil {
		return fmt.Errorf("lifecycle %s failed: %w", name, err)
	}
	env.completed = append(env.completed, CompletedEvent{Event: ev})
	return nil
}

func (env *environment) tick(ev *Event) error {
	if err := env.fleet.Advance(env.tickInterval.Seconds()); err != nil {
		return err
	}

	samples := env.fleet.Snapshot()
	env.completed = append(env.completed, CompletedEvent{Event: ev, Samples: samples})

	for _, l := range env.listeners {
		if err := l.OnTick(ev.OccursAt, samples); err != nil {
			env.logger.Warnw("tick listener failed", "at", ev.OccursAt.UnixNano(), "error", err)
		}
	}
	return nil
}

func (env *environment) maneuver(ev *Event) {
	m := ev.Maneuver
	e, ok := env.fleet.Get(m.Vehicle)
	if !ok {
		env.ignore(ev, UnknownVehicle, fmt.Sprintf("no vehicle named '%s'", m.Vehicle))
		return
	}

	if err := m.apply(e); err != nil {
		env.ignore(ev, ManeuverRejected, err.Error())
		return
	}

	env.logger.Debugw("maneuver applied", "vehicle", string(m.Vehicle), "velocity", e.Velocity())
	env.completed = append(env.completed, CompletedEvent{Event: ev, Samples: []vehicle.State{e.Snapshot()}})
}

func (env *environment) ignore(ev *Event, reason, detail string) {
	env.logger.Infow("ignoring event", "event", ev.String(), "reason", reason, "detail", detail)
	env.ignored = append(env.ignored, IgnoredEvent{Event: ev, Reason: reason, Detail: detail})
}

func (env *environment) abort(cause error) {
	env.logger.Errorw("simulation aborted", "at", env.current.UnixNano(), "error", cause)
	if env.lifecycle.Can("abort") {
		_ = env.lifecycle.Event("abort")
	}
	env.queue.Close()
}

// NewEnvironment creates an environment that ticks the fleet every tickInterval from startAt
// until startAt+runFor. The logger is taken from ctx.
func NewEnvironment(ctx context.Context, fleet *Fleet, startAt time.Time, runFor, tickInterval time.Duration) (Environment, error) {
	return newEnvironment(ctx, fleet, startAt, runFor, tickInterval, NewEventPriorityQueue())
}

func newEnvironment(ctx context.Context, fleet *Fleet, startAt time.Time, runFor, tickInterval time.Duration, queue EventPriorityQueue) (*environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fleet == nil {
		return nil, fmt.Errorf("environment needs a fleet: %w", vehicle.ErrInvalidArgument)
	}
	if tickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s: %w", tickInterval, vehicle.ErrInvalidArgument)
	}
	if runFor < 0 {
		return nil, fmt.Errorf("run duration must not be negative, got %s: %w", runFor, vehicle.ErrInvalidArgument)
	}

	if ticks := runFor / tickInterval; ticks > MaxTicks {
		return nil, fmt.Errorf("running %s every %s takes %d ticks, more than %d: %w", runFor, tickInterval, int64(ticks), MaxTicks, vehicle.ErrInvalidArgument)
	}

	logger := LoggerFrom(ctx).Named("simulator")

	env := &environment{
		ctx:          ctx,
		logger:       logger,
		fleet:        fleet,
		current:      startAt,
		haltAt:       startAt.Add(runFor),
		tickInterval: tickInterval,
		queue:        queue,
		completed:    make([]CompletedEvent, 0),
		ignored:      make([]IgnoredEvent, 0),
	}

	env.lifecycle = fsm.NewFSM(
		stateStarting,
		fsm.Events{
			{Name: "start", Src: []string{stateStarting}, Dst: stateRunning},
			{Name: "halt", Src: []string{stateRunning}, Dst: stateHalted},
			{Name: "abort", Src: []string{stateStarting, stateRunning}, Dst: stateHalted},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				logger.Debugw("environment changed state", "from", e.Src, "to", e.Dst)
			},
		},
	)

	for _, ev := range initialEvents(startAt, env.haltAt, tickInterval) {
		if err := queue.EnqueueEvent(ev); err != nil {
			return nil, err
		}
	}

	return env, nil
}

func initialEvents(startAt, haltAt time.Time, tickInterval time.Duration) []*Event {
	events := []*Event{newEvent(StartEvent, startAt)}
	for at := startAt.Add(tickInterval); !at.After(haltAt); at = at.Add(tickInterval) {
		events = append(events, newEvent(TickEvent, at))
	}
	return append(events, newEvent(HaltEvent, haltAt))
}
