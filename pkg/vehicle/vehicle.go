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
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	planeHorizontalSpeed = 1.0
	planeVerticalSpeed   = 10.0
)

type Option func(v *vehicle)

// WithLogger sets the logger that reports rejected writes. The default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(v *vehicle) {
		if logger != nil {
			v.logger = logger
		}
	}
}

type vehicle struct {
	name     EntityName
	variant  Variant
	position mgl64.Vec3
	velocity mgl64.Vec3
	logger   *zap.SugaredLogger
}

func (v *vehicle) Name() EntityName {
	return v.name
}

func (v *vehicle) Variant() Variant {
	return v.variant
}

func (v *vehicle) Capabilities() Capabilities {
	return v.variant.Capabilities()
}

func (v *vehicle) Advance(dt float64) error {
	if !finite(dt) {
		return fmt.Errorf("cannot advance '%s' by %v: %w", v.name, dt, ErrInvalidArgument)
	}
	if dt == 0 {
		return nil
	}

	position := advance(v.variant, v.position, v.velocity, dt)
	if !finiteVec(position) {
		return fmt.Errorf("advancing '%s' by %v overflows its position: %w", v.name, dt, ErrInvalidArgument)
	}

	v.position = position
	return nil
}

func (v *vehicle) Position() []float64 {
	return components(v.variant, v.position)
}

func (v *vehicle) Velocity() []float64 {
	return components(v.variant, v.velocity)
}

func (v *vehicle) PositionComponent(axis Axis) (float64, error) {
	if err := v.checkAxis(axis); err != nil {
		return 0, err
	}
	return v.position[axis], nil
}

func (v *vehicle) VelocityComponent(axis Axis) (float64, error) {
	if err := v.checkAxis(axis); err != nil {
		return 0, err
	}
	return v.velocity[axis], nil
}

func (v *vehicle) SetVelocityComponent(axis Axis, value interface{}) error {
	if err := v.checkAxis(axis); err != nil {
		return err
	}

	f, ok := numeric(value)
	if !ok {
		v.logger.Warnw("V"+strings.ToUpper(axis.String())+" must be numeric. Unchanged",
			"vehicle", string(v.name),
			"value", fmt.Sprintf("%#v", value),
		)
		return &ValidationError{Entity: v.name, Axis: axis, Value: value}
	}

	v.velocity[axis] = f
	return nil
}

func (v *vehicle) VelocityX() float64 {
	return v.velocity.X()
}

func (v *vehicle) VelocityY() float64 {
	return v.velocity.Y()
}

func (v *vehicle) VelocityZ() (float64, error) {
	return v.VelocityComponent(Z)
}

func (v *vehicle) TrySetVelocityX(value interface{}) error {
	return v.SetVelocityComponent(X, value)
}

func (v *vehicle) TrySetVelocityY(value interface{}) error {
	return v.SetVelocityComponent(Y, value)
}

func (v *vehicle) TrySetVelocityZ(value interface{}) error {
	return v.SetVelocityComponent(Z, value)
}

// ChangeVelocity adds one delta per axis to the velocity. Either every delta is applied or none is.
func (v *vehicle) ChangeVelocity(deltas ...float64) error {
	delta, err := toVec(v.variant, deltas)
	if err != nil {
		return fmt.Errorf("cannot change velocity of '%s': %w", v.name, err)
	}

	velocity := v.velocity.Add(delta)
	if !finiteVec(velocity) {
		return fmt.Errorf("changing velocity of '%s' by %v overflows: %w", v.name, deltas, ErrInvalidArgument)
	}

	v.velocity = velocity
	return nil
}

func (v *vehicle) SetPosition(position ...float64) error {
	pos, err := toVec(v.variant, position)
	if err != nil {
		return fmt.Errorf("cannot set position of '%s': %w", v.name, err)
	}

	v.position = pos
	return nil
}

// Field looks up name, pos (or position), speed (or velocity), variant and capabilities, ignoring case.
func (v *vehicle) Field(key string) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		return string(v.name), nil
	case "pos", "position":
		return v.Position(), nil
	case "speed", "velocity":
		return v.Velocity(), nil
	case "variant":
		return v.variant.String(), nil
	case "capabilities":
		return v.Capabilities(), nil
	default:
		return nil, fmt.Errorf("'%s' has no field %q: %w", v.name, key, ErrInvalidArgument)
	}
}

func (v *vehicle) Snapshot() State {
	return State{
		Name:     v.name,
		Variant:  v.variant,
		Position: v.Position(),
		Velocity: v.Velocity(),
	}
}

func (v *vehicle) String() string {
	return fmt.Sprintf("vehicle=%s, pos=[%s], speed=[%s]", v.name, formatComponents(v.Position()), formatComponents(v.Velocity()))
}

func (v *vehicle) checkAxis(axis Axis) error {
	if axis < X || int(axis) >= v.variant.Dimensions() {
		return fmt.Errorf("%s '%s' has no %s axis: %w", v.variant, v.name, axis, ErrInvalidArgument)
	}
	return nil
}

// New creates a vehicle at rest at the origin.
func New(variant Variant, name EntityName, opts ...Option) (Entity, error) {
	return newVehicle(variant, name, opts)
}

func NewCar(name EntityName, opts ...Option) (Entity, error) {
	return newVehicle(SurfaceOnly, name, opts)
}

func NewBoat(name EntityName, opts ...Option) (Entity, error) {
	return newVehicle(WaterOnly, name, opts)
}

// NewPlane creates a plane at the given altitude, flying at 1 unit/s on both horizontal
// axes and climbing at 10 units/s.
func NewPlane(name EntityName, altitude float64, opts ...Option) (Entity, error) {
	if !finite(altitude) {
		return nil, fmt.Errorf("altitude of '%s' must be finite, got %v: %w", name, altitude, ErrInvalidArgument)
	}

	v, err := newVehicle(Volumetric, name, opts)
	if err != nil {
		return nil, err
	}
	v.position = mgl64.Vec3{0, 0, altitude}
	v.velocity = mgl64.Vec3{planeHorizontalSpeed, planeHorizontalSpeed, planeVerticalSpeed}

	return v, nil
}

// NewFromComponents creates a vehicle with explicit kinematics. Both slices must have one
// component per axis of the variant.
func NewFromComponents(variant Variant, name EntityName, position, velocity []float64, opts ...Option) (Entity, error) {
	v, err := newVehicle(variant, name, opts)
	if err != nil {
		return nil, err
	}

	v.position, err = toVec(variant, position)
	if err != nil {
		return nil, fmt.Errorf("bad position for '%s': %w", name, err)
	}

	v.velocity, err = toVec(variant, velocity)
	if err != nil {
		return nil, fmt.Errorf("bad velocity for '%s': %w", name, err)
	}

	return v, nil
}

func newVehicle(variant Variant, name EntityName, opts []Option) (*vehicle, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unknown variant %d: %w", int(variant), ErrInvalidArgument)
	}
	if strings.TrimSpace(string(name)) == "" {
		return nil, fmt.Errorf("vehicle name must not be empty: %w", ErrInvalidArgument)
	}

	v := &vehicle{
		name:    name,
		variant: variant,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

func advance(variant Variant, position, velocity mgl64.Vec3, dt float64) mgl64.Vec3 {
	switch variant {
	case SurfaceOnly, WaterOnly:
		return position.Vec2().Add(velocity.Vec2().Mul(dt)).Vec3(position.Z())
	case Volumetric:
		return position.Add(velocity.Mul(dt))
	default:
		panic(fmt.Errorf("cannot advance unknown variant %d", int(variant)))
	}
}

func components(variant Variant, vec mgl64.Vec3) []float64 {
	out := make([]float64, variant.Dimensions())
	copy(out, vec[:])
	return out
}

func toVec(variant Variant, values []float64) (mgl64.Vec3, error) {
	var vec mgl64.Vec3
	if len(values) != variant.Dimensions() {
		return vec, fmt.Errorf("%s takes %d components, got %d: %w", variant, variant.Dimensions(), len(values), ErrInvalidArgument)
	}

	for i, value := range values {
		if !finite(value) {
			return vec, fmt.Errorf("component %s is %v: %w", Axis(i), value, ErrInvalidArgument)
		}
		vec[i] = value
	}

	return vec, nil
}

func numeric(value interface{}) (float64, bool) {
	var f float64
	switch n := value.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}

	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(vec mgl64.Vec3) bool {
	return finite(vec[0]) && finite(vec[1]) && finite(vec[2])
}

func formatComponents(values []float64) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.FormatFloat(value, 'f', 2, 64)
	}
	return strings.Join(parts, ", ")
}
