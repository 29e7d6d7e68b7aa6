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
	"math"

	"golang.org/x/sync/errgroup"

	"vehicles/pkg/vehicle"
)

// Fleet owns an ordered collection of vehicles. Names are unique within a Fleet.
type Fleet struct {
	entities []vehicle.Entity
	byName   map[vehicle.EntityName]vehicle.Entity
}

func NewFleet(entities ...vehicle.Entity) (*Fleet, error) {
	f := &Fleet{
		entities: make([]vehicle.Entity, 0, len(entities)),
		byName:   make(map[vehicle.EntityName]vehicle.Entity, len(entities)),
	}

	for _, e := range entities {
		if err := f.Add(e); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (f *Fleet) Add(e vehicle.Entity) error {
	if e == nil {
		return fmt.Errorf("cannot add a nil vehicle: %w", vehicle.ErrInvalidArgument)
	}
	if _, exists := f.byName[e.Name()]; exists {
		return fmt.Errorf("fleet already has a vehicle named '%s': %w", e.Name(), vehicle.ErrInvalidArgument)
	}

	f.entities = append(f.entities, e)
	f.byName[e.Name()] = e
	return nil
}

func (f *Fleet) Get(name vehicle.EntityName) (vehicle.Entity, bool) {
	e, ok := f.byName[name]
	return e, ok
}

func (f *Fleet) Entities() []vehicle.Entity {
	out := make([]vehicle.Entity, len(f.entities))
	copy(out, f.entities)
	return out
}

func (f *Fleet) Len() int {
	return len(f.entities)
}

// Advance advances every vehicle by dt, one after another in insertion order.
// It stops at the first vehicle that fails.
func (f *Fleet) Advance(dt float64) error {
	if err := checkDelta(dt); err != nil {
		return err
	}

	for _, e := range f.entities {
		if err := e.Advance(dt); err != nil {
			return fmt.Errorf("could not advance '%s': %w", e.Name(), err)
		}
	}
	return nil
}

// AdvanceConcurrently advances every vehicle by dt using up to workers goroutines.
// Each vehicle is advanced by exactly one goroutine. workers <= 0 means one goroutine per vehicle.
func (f *Fleet) AdvanceConcurrently(ctx context.Context, dt float64, workers int) error {
	if err := checkDelta(dt); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, e := range f.entities {
		e := e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.Advance(dt); err != nil {
				return fmt.Errorf("could not advance '%s': %w", e.Name(), err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (f *Fleet) Snapshot() []vehicle.State {
	states := make([]vehicle.State, len(f.entities))
	for i, e := range f.entities {
		states[i] = e.Snapshot()
	}
	return states
}

func checkDelta(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("cannot advance fleet by %v: %w", dt, vehicle.ErrInvalidArgument)
	}
	return nil
}
