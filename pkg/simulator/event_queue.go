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
	"strconv"
	"strings"

	"k8s.io/client-go/tools/cache"
)

type EventPriorityQueue interface {
	EnqueueEvent(event *Event) error
	DequeueEvent() (event *Event, err error, closed bool)
	Len() int
	Close()
	IsClosed() bool
}

type eventPQ struct {
	heap *cache.Heap
	seq  uint64
}

// EnqueueEvent stamps the event with an insertion sequence, so that events with the
// same time and kind leave the queue in the order they entered it.
func (epq *eventPQ) EnqueueEvent(event *Event) error {
	epq.seq++
	event.seq = epq.seq
	return epq.heap.Add(event)
}

// DequeueEvent picks the next earliest event from the queue.
// It will block until there is an Event to retrieve
// Returns:
// 	event - the next Event, if available
// 	err - any errors
// 	closed - whether the underlying queue has "closed", meaning no further
// 	events can be dequeued.
func (epq *eventPQ) DequeueEvent() (event *Event, err error, closed bool) {
	n, err := epq.heap.Pop()

	if err != nil && strings.Contains(err.Error(), "heap is closed") {
		return nil, nil, true
	} else if err != nil {
		return nil, err, false
	}

	return n.(*Event), nil, false
}

func (epq *eventPQ) Len() int {
	return len(epq.heap.ListKeys())
}

func (epq *eventPQ) Close() {
	epq.heap.Close()
}

func (epq *eventPQ) IsClosed() bool {
	return epq.heap.IsClosed()
}

func NewEventPriorityQueue() EventPriorityQueue {
	return &eventPQ{
		heap: cache.NewHeap(eventToKey, leftEventIsEarlier),
	}
}

func eventToKey(event interface{}) (key string, err error) {
	ev := event.(*Event)
	return strconv.FormatUint(ev.seq, 10), nil
}

func leftEventIsEarlier(left interface{}, right interface{}) bool {
	l := left.(*Event)
	r := right.(*Event)

	if !l.OccursAt.Equal(r.OccursAt) {
		return l.OccursAt.Before(r.OccursAt)
	}
	if l.Kind.priority() != r.Kind.priority() {
		return l.Kind.priority() < r.Kind.priority()
	}
	return l.seq < r.seq
}
