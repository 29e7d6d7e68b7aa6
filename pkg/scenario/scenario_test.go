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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

func TestScenario(t *testing.T) {
	spec.Run(t, "Scenario spec", testScenario, spec.Report(report.Terminal{}))
}

const lessonYAML = `
name: lesson
tick_interval: 10s
duration: 20s
vehicles:
  - name: corsa
    variant: car
    velocity: [1, 2]
  - name: plane
    variant: Plane
    altitude: 10
maneuvers:
  - at: 10s
    vehicle: corsa
    delta: [19, 0]
`

func testScenario(t *testing.T, describe spec.G, it spec.S) {
	var subject *Scenario
	var err error

	describe("Parse()", func() {
		describe("a valid scenario", func() {
			it.Before(func() {
				subject, err = Parse([]byte(lessonYAML))
				require.NoError(t, err)
			})

			it("decodes every field", func() {
				want := &Scenario{
					Name:         "lesson",
					TickInterval: "10s",
					Duration:     "20s",
					Vehicles: []VehicleSpec{
						{Name: "corsa", Variant: "car", Velocity: []float64{1, 2}},
						{Name: "plane", Variant: "Plane", Altitude: 10},
					},
					Maneuvers: []ManeuverSpec{
						{At: "10s", Vehicle: "corsa", Delta: []float64{19, 0}},
					},
				}
				if diff := cmp.Diff(want, subject); diff != "" {
					t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
				}
			})

			it("parses durations", func() {
				tick, err := subject.Tick()
				require.NoError(t, err)
				assert.Equal(t, 10*time.Second, tick)

				runFor, err := subject.RunFor()
				require.NoError(t, err)
				assert.Equal(t, 20*time.Second, runFor)
			})
		})

		describe("JSON", func() {
			it("is accepted too", func() {
				subject, err = Parse([]byte(`{"name":"json","vehicles":[{"name":"b","variant":"Boat"}]}`))
				require.NoError(t, err)
				assert.Equal(t, "b", subject.Vehicles[0].Name)
			})
		})

		describe("defaults", func() {
			it.Before(func() {
				subject, err = Parse([]byte("vehicles: [{name: b, variant: boat}]"))
				require.NoError(t, err)
			})

			it("names the scenario", func() {
				assert.Equal(t, "unnamed", subject.Name)
			})

			it("sets the tick interval and duration", func() {
				assert.Equal(t, DefaultTickInterval, subject.TickInterval)
				assert.Equal(t, DefaultDuration, subject.Duration)
			})
		})

		describe("invalid scenarios", func() {
			cases := map[string]string{
				"not yaml":             "vehicles: [",
				"too many ticks":       "tick_interval: 1ns\nduration: 100h\nvehicles: [{name: a, variant: car}]",
				"no vehicles":          "name: empty",
				"unnamed vehicle":      "vehicles: [{variant: car}]",
				"duplicate vehicle":    "vehicles: [{name: a, variant: car}, {name: a, variant: boat}]",
				"unknown variant":      "vehicles: [{name: a, variant: submarine}]",
				"wrong dimensions":     "vehicles: [{name: a, variant: car, position: [1, 2, 3]}]",
				"bad tick interval":    "tick_interval: soon\nvehicles: [{name: a, variant: car}]",
				"zero tick interval":   "tick_interval: 0s\nvehicles: [{name: a, variant: car}]",
				"negative duration":    "duration: -1s\nvehicles: [{name: a, variant: car}]",
				"maneuver for nobody":  "vehicles: [{name: a, variant: car}]\nmaneuvers: [{at: 1s, vehicle: b, delta: [1, 1]}]",
				"maneuver set + delta": "vehicles: [{name: a, variant: car}]\nmaneuvers: [{at: 1s, vehicle: a, set: [1, 1], delta: [1, 1]}]",
				"maneuver in the past": "vehicles: [{name: a, variant: car}]\nmaneuvers: [{at: -1s, vehicle: a, delta: [1, 1]}]",
			}

			for name, doc := range cases {
				name, doc := name, doc
				it("rejects "+name, func() {
					_, err = Parse([]byte(doc))
					assert.Error(t, err)
				})
			}

			it("accepts exactly the largest number of ticks", func() {
				_, err = Parse([]byte("tick_interval: 1ms\nduration: 100s\nvehicles: [{name: a, variant: car}]"))
				assert.NoError(t, err)
			})

			it("reports too many ticks as an invalid argument", func() {
				_, err = Parse([]byte("tick_interval: 1ns\nduration: 100h\nvehicles: [{name: a, variant: car}]"))
				assert.True(t, errors.Is(err, vehicle.ErrInvalidArgument))
			})

			it("reports invalid values as invalid arguments", func() {
				_, err = Parse([]byte("vehicles: [{name: a, variant: submarine}]"))
				assert.True(t, errors.Is(err, vehicle.ErrInvalidArgument))
			})
		})
	})

	describe("Load()", func() {
		it("reads a file", func() {
			path := filepath.Join(t.TempDir(), "lesson.yaml")
			require.NoError(t, os.WriteFile(path, []byte(lessonYAML), 0644))

			subject, err = Load(path)
			require.NoError(t, err)
			assert.Equal(t, "lesson", subject.Name)
		})

		it("fails for a missing file", func() {
			_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
			assert.Error(t, err)
		})
	})

	describe("VehicleSpec.Build()", func() {
		it("gives a plane without kinematics its defaults", func() {
			e, err := VehicleSpec{Name: "p", Variant: "plane", Altitude: 10}.Build()
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 0, 10}, e.Position())
			assert.Equal(t, []float64{1, 1, 10}, e.Velocity())
		})

		it("fills a missing velocity with zeros", func() {
			e, err := VehicleSpec{Name: "c", Variant: "car", Position: []float64{3, 4}}.Build()
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 0}, e.Velocity())
		})
	})

	describe("Environment()", func() {
		var env simulator.Environment
		var startAt time.Time

		describe("the lesson scenario", func() {
			it.Before(func() {
				startAt = time.Unix(0, 0)
				subject, err = Parse([]byte(lessonYAML))
				require.NoError(t, err)

				env, err = subject.Environment(context.Background(), startAt)
				require.NoError(t, err)

				_, _, err = env.Run()
				require.NoError(t, err)
			})

			it("applies the maneuver after the first tick", func() {
				corsa, ok := env.Fleet().Get("corsa")
				require.True(t, ok)
				assert.Equal(t, []float64{10 + 20*10, 20 + 2*10}, corsa.Position())
			})

			it("flies the plane", func() {
				plane, ok := env.Fleet().Get("plane")
				require.True(t, ok)
				assert.Equal(t, []float64{20, 20, 210}, plane.Position())
			})
		})

		describe("Default()", func() {
			it.Before(func() {
				subject = Default()
				require.NoError(t, subject.Validate())
				env, err = subject.Environment(context.Background(), time.Unix(0, 0))
				require.NoError(t, err)
				_, _, err = env.Run()
				require.NoError(t, err)
			})

			it("keeps declaration order", func() {
				names := make([]vehicle.EntityName, 0)
				for _, e := range env.Fleet().Entities() {
					names = append(names, e.Name())
				}
				assert.Equal(t, []vehicle.EntityName{"corsa", "nissan", "boat", "car", "plane"}, names)
			})

			it("speeds corsa up after ten seconds", func() {
				corsa, _ := env.Fleet().Get("corsa")
				assert.Equal(t, []float64{410, 60}, corsa.Position())
			})

			it("moves nissan the other way", func() {
				nissan, _ := env.Fleet().Get("nissan")
				assert.Equal(t, []float64{-30, -60}, nissan.Position())
			})
		})
	})
}
