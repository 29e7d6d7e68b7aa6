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

package data

import (
	"fmt"
	"sync"
	"time"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
	"github.com/google/uuid"

	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

// Run is everything recorded about one simulation.
type Run struct {
	Scenario     string
	Origin       string
	TickInterval time.Duration
	RanFor       time.Duration
	Vehicles     []vehicle.State
	Completed    []simulator.CompletedEvent
	Ignored      []simulator.IgnoredEvent
}

// Sample is one recorded vehicle state.
type Sample struct {
	OccursAt time.Time     `json:"occurs_at"`
	Kind     string        `json:"kind"`
	State    vehicle.State `json:"state"`
}

type IgnoredRecord struct {
	OccursAt time.Time `json:"occurs_at"`
	Kind     string    `json:"kind"`
	Vehicle  string    `json:"vehicle,omitempty"`
	Reason   string    `json:"reason"`
	Detail   string    `json:"detail,omitempty"`
}

type RunStore interface {
	Store(run Run) (runID uuid.UUID, err error)
	Trajectory(runID uuid.UUID) ([]Sample, error)
	Ignored(runID uuid.UUID) ([]IgnoredRecord, error)
}

type storer struct {
	mu   sync.Mutex
	conn *sqlite3.Conn
}

func (s *storer) Store(run Run) (runID uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID = uuid.New()
	err = s.conn.WithTx(func() error {
		scenarioRunId, err := s.scenarioRun(runID, run)
		if err != nil {
			return err
		}
		return s.scenarioData(scenarioRunId, run)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("could not store run '%s': %w", run.Scenario, err)
	}

	return runID, nil
}

func (s *storer) Trajectory(runID uuid.UUID) ([]Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(TrajectoryQuery, runID.String())
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	samples := make([]Sample, 0)
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		var occursAt int64
		var kind, name, variantName string
		var pos, vel [3]float64
		err = stmt.Scan(&occursAt, &kind, &name, &variantName, &pos[0], &pos[1], &pos[2], &vel[0], &vel[1], &vel[2])
		if err != nil {
			return nil, err
		}

		variant, err := vehicle.ParseVariant(variantName)
		if err != nil {
			return nil, err
		}
		dims := variant.Dimensions()

		samples = append(samples, Sample{
			OccursAt: time.Unix(0, occursAt),
			Kind:     kind,
			State: vehicle.State{
				Name:     vehicle.EntityName(name),
				Variant:  variant,
				Position: append([]float64(nil), pos[:dims]...),
				Velocity: append([]float64(nil), vel[:dims]...),
			},
		})
	}

	return samples, nil
}

func (s *storer) Ignored(runID uuid.UUID) ([]IgnoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(IgnoredEventsQuery, runID.String())
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	records := make([]IgnoredRecord, 0)
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		var occursAt int64
		var rec IgnoredRecord
		err = stmt.Scan(&occursAt, &rec.Kind, &rec.Vehicle, &rec.Reason, &rec.Detail)
		if err != nil {
			return nil, err
		}
		rec.OccursAt = time.Unix(0, occursAt)
		records = append(records, rec)
	}

	return records, nil
}

func (s *storer) scenarioRun(runID uuid.UUID, run Run) (scenarioRunId int64, err error) {
	srStmt, err := s.conn.Prepare(`insert into scenario_runs(
									   run_uuid
									 , recorded
									 , scenario_name
									 , origin
									 , simulated_duration
									 , tick_interval)
									values (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return -1, err
	}
	defer srStmt.Close()

	err = srStmt.Exec(
		runID.String(),
		time.Now().Format(time.RFC3339),
		run.Scenario,
		run.Origin,
		run.RanFor.Nanoseconds(),
		run.TickInterval.Nanoseconds(),
	)
	if err != nil {
		return -1, err
	}

	return s.conn.LastInsertRowID(), nil
}

func (s *storer) scenarioData(scenarioRunId int64, run Run) error {
	vehicleStmt, err := s.conn.Prepare(`insert into vehicles(name, variant, scenario_run_id) values (?, ?, ?) on conflict do nothing`)
	if err != nil {
		return err
	}
	defer vehicleStmt.Close()

	for _, st := range run.Vehicles {
		err = vehicleStmt.Exec(string(st.Name), st.Variant.String(), scenarioRunId)
		if err != nil {
			return err
		}
	}

	sampleStmt, err := s.conn.Prepare(`insert into trajectory_samples(
            occurs_at
           , kind
           , vehicle
           , pos_x, pos_y, pos_z
           , vel_x, vel_y, vel_z
           , scenario_run_id
        ) values (
              ?
            , ?
            , (select id from vehicles where name = ? and scenario_run_id = ?)
            , ?, ?, ?
            , ?, ?, ?
            , ?)
    `)
	if err != nil {
		return err
	}
	defer sampleStmt.Close()

	for _, ce := range run.Completed {
		for _, st := range ce.Samples {
			err = vehicleStmt.Exec(string(st.Name), st.Variant.String(), scenarioRunId)
			if err != nil {
				return err
			}

			pos, vel := padded(st.Position), padded(st.Velocity)
			err = sampleStmt.Exec(
				ce.Event.OccursAt.UnixNano(),
				string(ce.Event.Kind),
				string(st.Name),
				scenarioRunId,
				pos[0], pos[1], pos[2],
				vel[0], vel[1], vel[2],
				scenarioRunId,
			)
			if err != nil {
				return err
			}
		}
	}

	ignoredStmt, err := s.conn.Prepare(`insert into ignored_events(
		occurs_at
	  , kind
	  , vehicle_name
	  , reason
	  , detail
	  , scenario_run_id
  ) values (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer ignoredStmt.Close()

	for _, ie := range run.Ignored {
		var name string
		if ie.Event.Maneuver != nil {
			name = string(ie.Event.Maneuver.Vehicle)
		}

		err = ignoredStmt.Exec(
			ie.Event.OccursAt.UnixNano(),
			string(ie.Event.Kind),
			name,
			ie.Reason,
			ie.Detail,
			scenarioRunId,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func padded(components []float64) [3]float64 {
	var out [3]float64
	copy(out[:], components)
	return out
}

// NewRunStore applies the schema to conn. Calls are serialized so the store can be shared
// between goroutines.
func NewRunStore(conn *sqlite3.Conn) RunStore {
	err := conn.Exec(Schema)
	if err != nil {
		panic(fmt.Errorf("could not apply vehicles schema: %s", err.Error()))
	}

	return &storer{
		conn: conn,
	}
}
