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

// Variant is the closed set of vehicle kinds. The zero value is not a valid variant.
type Variant int

const (
	SurfaceOnly Variant = iota + 1
	WaterOnly
	Volumetric
)

var Variants = []Variant{SurfaceOnly, WaterOnly, Volumetric}

type Capabilities struct {
	OnLand  bool `json:"on_land"`
	OnWater bool `json:"on_water"`
	OnAir   bool `json:"on_air"`
}

func (v Variant) String() string {
	switch v {
	case SurfaceOnly:
		return "Car"
	case WaterOnly:
		return "Boat"
	case Volumetric:
		return "Plane"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func (v Variant) Dimensions() int {
	switch v {
	case SurfaceOnly, WaterOnly:
		return 2
	case Volumetric:
		return 3
	default:
		panic(fmt.Errorf("no dimensions for unknown variant %d", int(v)))
	}
}

func (v Variant) Capabilities() Capabilities {
	switch v {
	case SurfaceOnly:
		return Capabilities{OnLand: true}
	case WaterOnly:
		return Capabilities{OnWater: true}
	case Volumetric:
		return Capabilities{OnLand: true, OnWater: true, OnAir: true}
	default:
		panic(fmt.Errorf("no capabilities for unknown variant %d", int(v)))
	}
}

func (v Variant) Valid() bool {
	return v >= SurfaceOnly && v <= Volumetric
}

func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("cannot marshal %s: %w", v, ErrInvalidArgument)
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant accepts either the tag name ("SurfaceOnly") or the vehicle name ("Car"), ignoring case.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car", "surfaceonly", "surface_only", "surface":
		return SurfaceOnly, nil
	case "boat", "wateronly", "water_only", "water":
		return WaterOnly, nil
	case "plane", "volumetric":
		return Volumetric, nil
	default:
		return 0, fmt.Errorf("unknown variant %q: %w", s, ErrInvalidArgument)
	}
}
