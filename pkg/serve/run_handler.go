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

package serve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicles/pkg/data"
	"vehicles/pkg/scenario"
	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

const origin = "vehicles_http"

var startAt = time.Unix(0, 0)

type sampleLine struct {
	OccursAt int64              `json:"occurs_at"`
	Kind     string             `json:"kind"`
	Vehicle  vehicle.EntityName `json:"vehicle"`
	Position []float64          `json:"position"`
	Velocity []float64          `json:"velocity"`
}

type ignoredLine struct {
	OccursAt int64  `json:"occurs_at"`
	Kind     string `json:"kind"`
	Vehicle  string `json:"vehicle,omitempty"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail,omitempty"`
}

type runResponse struct {
	RunID    string          `json:"run_id"`
	Scenario string          `json:"scenario"`
	Stored   bool            `json:"stored"`
	Vehicles []vehicle.State `json:"vehicles"`
	Samples  []sampleLine    `json:"samples"`
	Ignored  []ignoredLine   `json:"ignored"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type runHandler struct {
	store  data.RunStore
	logger *zap.SugaredLogger
}

func (rh *runHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sc, err := readScenario(http.MaxBytesReader(w, r.Body, maxScenarioSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	logger := rh.logger.With("scenario", sc.Name)
	outcome, err := sc.Run(simulator.WithLogger(r.Context(), logger), startAt)
	if err != nil {
		logger.Errorw("run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := newRunResponse(outcome)
	if rh.store != nil {
		runID, err := rh.store.Store(outcome.Record(origin))
		if err != nil {
			logger.Errorw("could not store run", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		resp.RunID = runID.String()
		resp.Stored = true
	}

	writeJSON(w, http.StatusOK, resp)
}

func newRunResponse(outcome *scenario.Outcome) runResponse {
	resp := runResponse{
		RunID:    uuid.New().String(),
		Scenario: outcome.Scenario.Name,
		Vehicles: outcome.Final,
		Samples:  make([]sampleLine, 0),
		Ignored:  make([]ignoredLine, 0, len(outcome.Ignored)),
	}

	for _, ce := range outcome.Completed {
		for _, st := range ce.Samples {
			resp.Samples = append(resp.Samples, sampleLine{
				OccursAt: ce.Event.OccursAt.UnixNano(),
				Kind:     string(ce.Event.Kind),
				Vehicle:  st.Name,
				Position: st.Position,
				Velocity: st.Velocity,
			})
		}
	}

	for _, ie := range outcome.Ignored {
		line := ignoredLine{
			OccursAt: ie.Event.OccursAt.UnixNano(),
			Kind:     string(ie.Event.Kind),
			Reason:   ie.Reason,
			Detail:   ie.Detail,
		}
		if ie.Event.Maneuver != nil {
			line.Vehicle = string(ie.Event.Maneuver.Vehicle)
		}
		resp.Ignored = append(resp.Ignored, line)
	}

	return resp
}

// readScenario parses a YAML or JSON scenario. An empty body selects the default scenario.
func readScenario(body io.Reader) (*scenario.Scenario, error) {
	if body == nil {
		return scenario.Default(), nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return scenario.Default(), nil
	}

	return scenario.Parse(raw)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
