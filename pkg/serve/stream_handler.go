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
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vehicles/pkg/simulator"
	"vehicles/pkg/vehicle"
)

const writeWait = 5 * time.Second

type streamMessage struct {
	Type     string          `json:"type"`
	OccursAt int64           `json:"occurs_at,omitempty"`
	Samples  []vehicle.State `json:"samples,omitempty"`
	Ignored  *int            `json:"ignored,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// safeWriter serializes writes to a websocket connection. It forwards every tick it hears about.
type safeWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
	pace time.Duration
	ctx  context.Context
}

func (sw *safeWriter) WriteJSON(v interface{}) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if err := sw.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return sw.conn.WriteJSON(v)
}

func (sw *safeWriter) OnTick(at time.Time, samples []vehicle.State) error {
	if err := sw.WriteJSON(streamMessage{Type: "tick", OccursAt: at.UnixNano(), Samples: samples}); err != nil {
		return err
	}

	if sw.pace > 0 {
		select {
		case <-time.After(sw.pace):
		case <-sw.ctx.Done():
		}
	}
	return nil
}

func (sw *safeWriter) Close(code int, text string) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	_ = sw.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
	return sw.conn.Close()
}

// streamHandler upgrades to a websocket, reads one scenario document (an empty message selects
// the default scenario) and pushes a message per tick, then a final "done" message.
// The optional pace query parameter waits between ticks, e.g. ?pace=250ms.
type streamHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

func (sh *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var pace time.Duration
	if p := strings.TrimSpace(r.URL.Query().Get("pace")); p != "" {
		var err error
		pace, err = time.ParseDuration(p)
		if err != nil || pace < 0 {
			http.Error(w, "pace must be a non-negative duration", http.StatusBadRequest)
			return
		}
	}

	conn, err := sh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sh.logger.Warnw("upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxScenarioSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writer := &safeWriter{conn: conn, pace: pace, ctx: ctx}
	defer writer.Close(websocket.CloseNormalClosure, "")

	_, raw, err := conn.ReadMessage()
	if err != nil {
		sh.logger.Warnw("could not read scenario", "error", err)
		return
	}

	sc, err := readScenario(bytes.NewReader(raw))
	if err != nil {
		_ = writer.WriteJSON(streamMessage{Type: "error", Error: err.Error()})
		return
	}

	logger := sh.logger.With("scenario", sc.Name)
	outcome, err := sc.Run(simulator.WithLogger(ctx, logger), startAt, writer)
	if err != nil {
		logger.Errorw("run failed", "error", err)
		_ = writer.WriteJSON(streamMessage{Type: "error", Error: err.Error()})
		return
	}

	ignored := len(outcome.Ignored)
	_ = writer.WriteJSON(streamMessage{Type: "done", Ignored: &ignored})
}
