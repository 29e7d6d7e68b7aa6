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
	"time"

	"github.com/stretchr/testify/mock"

	"vehicles/pkg/vehicle"
)

// mockEntity only implements what a Fleet calls. Anything else panics on the nil embedded Entity.
type mockEntity struct {
	vehicle.Entity
	mock.Mock

	name vehicle.EntityName
}

func (me *mockEntity) Name() vehicle.EntityName {
	return me.name
}

func (me *mockEntity) String() string {
	return string(me.name)
}

func (me *mockEntity) Advance(dt float64) error {
	args := me.Called(dt)
	return args.Error(0)
}

func newMockEntity(name vehicle.EntityName) *mockEntity {
	return &mockEntity{name: name}
}

type fakeTickListener struct {
	ticks   []time.Time
	samples [][]vehicle.State
	err     error
}

func (ftl *fakeTickListener) OnTick(at time.Time, samples []vehicle.State) error {
	ftl.ticks = append(ftl.ticks, at)
	ftl.samples = append(ftl.samples, samples)
	return ftl.err
}
