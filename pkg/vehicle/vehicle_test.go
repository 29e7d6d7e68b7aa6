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
	"errors"
	"math"
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestVehicle(t *testing.T) {
	spec.Run(t, "Vehicle spec", testVehicle, spec.Report(report.Terminal{}))
}

func testVehicle(t *testing.T, describe spec.G, it spec.S) {
	var subject Entity
	var err error

	describe("NewCar()", func() {
		it.Before(func() {
			subject, err = NewCar("corsa")
			require.NoError(t, err)
		})

		it("sets the name", func() {
			assert.Equal(t, EntityName("corsa"), subject.Name())
		})

		it("is a SurfaceOnly vehicle", func() {
			assert.Equal(t, SurfaceOnly, subject.Variant())
		})

		it("can only occupy land", func() {
			assert.Equal(t, Capabilities{OnLand: true}, subject.Capabilities())
		})

		it("starts at rest at the origin", func() {
			assert.Equal(t, []float64{0, 0}, subject.Position())
			assert.Equal(t, []float64{0, 0}, subject.Velocity())
		})

		describe("when the name is empty", func() {
			it("returns an invalid argument error", func() {
				_, err = NewCar("")
				assert.True(t, errors.Is(err, ErrInvalidArgument))
			})
		})

		describe("when the name is blank", func() {
			it("returns an invalid argument error", func() {
				_, err = NewCar("   ")
				assert.True(t, errors.Is(err, ErrInvalidArgument))
			})
		})
	})

	describe("NewBoat()", func() {
		it.Before(func() {
			subject, err = NewBoat("titanic")
			require.NoError(t, err)
		})

		it("can only occupy water", func() {
			assert.Equal(t, Capabilities{OnWater: true}, subject.Capabilities())
			assert.False(t, subject.Capabilities().OnLand)
		})

		it("has two axes", func() {
			assert.Len(t, subject.Position(), 2)
			assert.Len(t, subject.Velocity(), 2)
		})
	})

	describe("NewPlane()", func() {
		it.Before(func() {
			subject, err = NewPlane("plane", 10)
			require.NoError(t, err)
		})

		it("can occupy land, water and air", func() {
			assert.Equal(t, Capabilities{OnLand: true, OnWater: true, OnAir: true}, subject.Capabilities())
		})

		it("starts at the given altitude", func() {
			assert.Equal(t, []float64{0, 0, 10}, subject.Position())
		})

		it("flies at 1 unit/s horizontally and climbs at 10 units/s", func() {
			assert.Equal(t, []float64{1, 1, 10}, subject.Velocity())
		})

		it("rejects a non-finite altitude", func() {
			_, err = NewPlane("plane", math.Inf(1))
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	})

	describe("NewFromComponents()", func() {
		it("sets position and velocity", func() {
			subject, err = NewFromComponents(SurfaceOnly, "corsa", []float64{3, 4}, []float64{1, 2})
			require.NoError(t, err)

			assert.Equal(t, []float64{3, 4}, subject.Position())
			assert.Equal(t, []float64{1, 2}, subject.Velocity())
		})

		it("rejects position with the wrong number of components", func() {
			_, err = NewFromComponents(SurfaceOnly, "corsa", []float64{3, 4, 5}, []float64{1, 2})
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})

		it("rejects velocity with the wrong number of components", func() {
			_, err = NewFromComponents(Volumetric, "plane", []float64{3, 4, 5}, []float64{1, 2})
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})

		it("rejects NaN components", func() {
			_, err = NewFromComponents(WaterOnly, "boat", []float64{math.NaN(), 0}, []float64{1, 2})
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})

		it("rejects the zero Variant", func() {
			_, err = NewFromComponents(Variant(0), "what", []float64{0, 0}, []float64{0, 0})
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	})

	describe("Advance()", func() {
		describe("a car at rest", func() {
			it.Before(func() {
				subject, err = NewCar("corsa")
				require.NoError(t, err)
				require.NoError(t, subject.Advance(10))
			})

			it("stays where it is", func() {
				assert.Equal(t, []float64{0, 0}, subject.Position())
			})
		})

		describe("a moving car", func() {
			it.Before(func() {
				subject, err = NewCar("corsa")
				require.NoError(t, err)
				require.NoError(t, subject.ChangeVelocity(1, 2))
			})

			it("moves by velocity times dt", func() {
				require.NoError(t, subject.Advance(10))
				assert.Equal(t, []float64{10, 20}, subject.Position())
			})

			it("does not change velocity", func() {
				require.NoError(t, subject.Advance(10))
				assert.Equal(t, []float64{1, 2}, subject.Velocity())
			})

			it("leaves everything unchanged when dt is zero", func() {
				require.NoError(t, subject.Advance(0))
				assert.Equal(t, []float64{0, 0}, subject.Position())
				assert.Equal(t, []float64{1, 2}, subject.Velocity())
			})

			it("rewinds when dt is negative", func() {
				require.NoError(t, subject.Advance(10))
				require.NoError(t, subject.Advance(-10))
				assert.Equal(t, []float64{0, 0}, subject.Position())
			})

			it("gives the same position for two steps as for their sum", func() {
				other, err := NewFromComponents(SurfaceOnly, "other", []float64{0, 0}, []float64{1, 2})
				require.NoError(t, err)

				require.NoError(t, subject.Advance(0.1))
				require.NoError(t, subject.Advance(0.7))
				require.NoError(t, other.Advance(0.8))

				assert.InDeltaSlice(t, other.Position(), subject.Position(), 1e-9)
			})

			it("rejects NaN and leaves the position alone", func() {
				require.NoError(t, subject.Advance(1))
				err = subject.Advance(math.NaN())
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				assert.Equal(t, []float64{1, 2}, subject.Position())
			})

			it("rejects infinity", func() {
				err = subject.Advance(math.Inf(-1))
				assert.True(t, errors.Is(err, ErrInvalidArgument))
			})
		})

		describe("a plane", func() {
			it.Before(func() {
				subject, err = NewPlane("plane", 10)
				require.NoError(t, err)
				require.NoError(t, subject.Advance(10))
			})

			it("advances on all three axes", func() {
				assert.Equal(t, []float64{10, 10, 110}, subject.Position())
			})
		})
	})

	describe("SetVelocityComponent()", func() {
		var logs *observer.ObservedLogs

		it.Before(func() {
			var core zapcore.Core
			core, logs = observer.New(zap.InfoLevel)
			subject, err = NewCar("corsa", WithLogger(zap.New(core).Sugar()))
			require.NoError(t, err)
			require.NoError(t, subject.TrySetVelocityX(3))
		})

		it("accepts integers", func() {
			assert.NoError(t, subject.SetVelocityComponent(Y, int64(20)))
			assert.Equal(t, 20.0, subject.VelocityY())
		})

		it("accepts floats", func() {
			assert.NoError(t, subject.SetVelocityComponent(X, float32(2.5)))
			assert.Equal(t, 2.5, subject.VelocityX())
		})

		describe("when the value is a string", func() {
			it.Before(func() {
				err = subject.SetVelocityComponent(X, "20")
			})

			it("returns a ValidationError", func() {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, EntityName("corsa"), ve.Entity)
				assert.Equal(t, X, ve.Axis)
				assert.Equal(t, "20", ve.Value)
				assert.True(t, errors.Is(err, ErrValidation))
			})

			it("keeps the previous value", func() {
				assert.Equal(t, 3.0, subject.VelocityX())
				assert.Equal(t, []float64{3, 0}, subject.Velocity())
			})

			it("logs a warning", func() {
				warnings := logs.FilterLevelExact(zap.WarnLevel).All()
				require.Len(t, warnings, 1)
				assert.Equal(t, "VX must be numeric. Unchanged", warnings[0].Message)
			})
		})

		it("rejects booleans", func() {
			err = subject.TrySetVelocityY(true)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, 0.0, subject.VelocityY())
		})

		it("rejects NaN", func() {
			err = subject.TrySetVelocityX(math.NaN())
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, 3.0, subject.VelocityX())
		})

		it("rejects an axis the variant does not have", func() {
			err = subject.TrySetVelocityZ(1.0)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.False(t, errors.Is(err, ErrValidation))

			_, err = subject.VelocityZ()
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})

		describe("on a plane", func() {
			it("sets the vertical velocity", func() {
				subject, err = NewPlane("plane", 0)
				require.NoError(t, err)

				require.NoError(t, subject.TrySetVelocityZ(-5))
				vz, err := subject.VelocityZ()
				require.NoError(t, err)
				assert.Equal(t, -5.0, vz)
			})
		})
	})

	describe("ChangeVelocity()", func() {
		it.Before(func() {
			subject, err = NewCar("corsa")
			require.NoError(t, err)
		})

		it("adds deltas to the velocity", func() {
			require.NoError(t, subject.ChangeVelocity(1, 2))
			require.NoError(t, subject.ChangeVelocity(-3, 1))
			assert.Equal(t, []float64{-2, 3}, subject.Velocity())
		})

		it("rejects the wrong number of deltas without changing anything", func() {
			err = subject.ChangeVelocity(1, 2, 3)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Equal(t, []float64{0, 0}, subject.Velocity())
		})

		it("rejects a change that would overflow, keeping the old velocity", func() {
			require.NoError(t, subject.ChangeVelocity(math.MaxFloat64, 0))

			err = subject.ChangeVelocity(math.MaxFloat64, 0)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Equal(t, []float64{math.MaxFloat64, 0}, subject.Velocity())
		})
	})

	describe("Advance() near the float limit", func() {
		it("refuses to move a vehicle past it", func() {
			subject, err = NewFromComponents(SurfaceOnly, "rocket", []float64{0, 0}, []float64{math.MaxFloat64, 1})
			require.NoError(t, err)

			err = subject.Advance(10)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Equal(t, []float64{0, 0}, subject.Position())
		})
	})

	describe("SetPosition()", func() {
		it.Before(func() {
			subject, err = NewPlane("plane", 0)
			require.NoError(t, err)
		})

		it("moves the vehicle", func() {
			require.NoError(t, subject.SetPosition(1, 2, 3))
			z, err := subject.PositionComponent(Z)
			require.NoError(t, err)
			assert.Equal(t, 3.0, z)
		})

		it("rejects infinite components", func() {
			err = subject.SetPosition(1, math.Inf(1), 3)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Equal(t, []float64{0, 0, 0}, subject.Position())
		})
	})

	describe("Field()", func() {
		it.Before(func() {
			subject, err = NewFromComponents(SurfaceOnly, "corsa", []float64{0, 0}, []float64{2, 2})
			require.NoError(t, err)
		})

		it("looks up the name", func() {
			name, err := subject.Field("name")
			require.NoError(t, err)
			assert.Equal(t, "corsa", name)
		})

		it("ignores case", func() {
			pos, err := subject.Field("POS")
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 0}, pos)
		})

		it("looks up the speed", func() {
			speed, err := subject.Field("speed")
			require.NoError(t, err)
			assert.Equal(t, []float64{2, 2}, speed)
		})

		it("rejects unknown keys", func() {
			_, err = subject.Field("arg1")
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	})

	describe("String()", func() {
		it("shows the name, position and speed with two decimals", func() {
			subject, err = NewFromComponents(SurfaceOnly, "corsa", []float64{20, 20}, []float64{2, 2})
			require.NoError(t, err)
			assert.Equal(t, "vehicle=corsa, pos=[20.00, 20.00], speed=[2.00, 2.00]", subject.String())
		})

		it("shows the vertical axis of a plane", func() {
			subject, err = NewPlane("plane", 10)
			require.NoError(t, err)
			assert.Equal(t, "vehicle=plane, pos=[0.00, 0.00, 10.00], speed=[1.00, 1.00, 10.00]", subject.String())
		})
	})

	describe("Snapshot()", func() {
		it("copies the state", func() {
			subject, err = NewCar("corsa")
			require.NoError(t, err)
			snap := subject.Snapshot()
			require.NoError(t, subject.ChangeVelocity(1, 1))
			require.NoError(t, subject.Advance(1))

			assert.Equal(t, State{
				Name:     "corsa",
				Variant:  SurfaceOnly,
				Position: []float64{0, 0},
				Velocity: []float64{0, 0},
			}, snap)
		})
	})
}
