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

package vehicle

import (
	"fmt"
	"strings"
)

type EntityName string

type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return X, nil
	case "y":
		return Y, nil
	case "z":
		return Z, nil
	default:
		return -1, fmt.Errorf("unknown axis %q: %w", s, ErrInvalidArgument)
	}
}

// Entity is a named vehicle holding position and velocity on the axes of its Variant.
//
// An Entity is not safe for concurrent use. Whoever holds it (usually a simulator.Fleet)
// must make sure only one caller advances or mutates it at a time.
type Entity interface {
	Name() EntityName
	Variant() Variant
	Capabilities() Capabilities

	// Advance moves the entity by velocity*dt on every axis of its variant.
	// A zero dt is a no-op. A non-finite dt is rejected and the state is left as it was.
	Advance(dt float64) error

	Position() []float64
	Velocity() []float64
	PositionComponent(axis Axis) (float64, error)
	VelocityComponent(axis Axis) (float64, error)

	// SetVelocityComponent stores value when it is a finite Go integer or float.
	// Anything else returns a *ValidationError and keeps the previous value.
	SetVelocityComponent(axis Axis, value interface{}) error

	VelocityX() float64
	VelocityY() float64
	VelocityZ() (float64, error)
	TrySetVelocityX(value interface{}) error
	TrySetVelocityY(value interface{}) error
	TrySetVelocityZ(value interface{}) error

	ChangeVelocity(deltas ...float64) error
	SetPosition(position ...float64) error

	Field(key string) (interface{}, error)
	Snapshot() State
	String() string
}

// State is a point-in-time copy of an Entity.
type State struct {
	Name     EntityName `json:"name"`
	Variant  Variant    `json:"variant"`
	Position []float64  `json:"position"`
	Velocity []float64  `json:"velocity"`
}
