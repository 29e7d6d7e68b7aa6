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

// Default is a small mixed fleet: two cars heading in opposite directions, then a boat,
// a car and a plane moving diagonally. The first car speeds up after ten seconds.
func Default() *Scenario {
	return &Scenario{
		Name:         "garage",
		TickInterval: "10s",
		Duration:     "30s",
		Vehicles: []VehicleSpec{
			{Name: "corsa", Variant: "Car", Position: []float64{0, 0}, Velocity: []float64{1, 2}},
			{Name: "nissan", Variant: "Car", Position: []float64{0, 0}, Velocity: []float64{-1, -2}},
			{Name: "boat", Variant: "Boat", Position: []float64{1, 2}, Velocity: []float64{1, 1}},
			{Name: "car", Variant: "Car", Position: []float64{3, 4}, Velocity: []float64{1, 1}},
			{Name: "plane", Variant: "Plane", Position: []float64{4, 5, 10}, Velocity: []float64{1, 1, 10}},
		},
		Maneuvers: []ManeuverSpec{
			{At: "10s", Vehicle: "corsa", Set: []float64{20, 2}},
		},
	}
}
