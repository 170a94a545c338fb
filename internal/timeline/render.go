/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"sync"
	"time"
)

// RenderLoop is a single cancellable per-frame scheduling handle. The
// callback must treat model and mapper state as read-only; rendering never
// mutates interaction state. The loop is started on component mount and must
// be stopped on unmount so no perpetual callback leaks.
type RenderLoop struct {
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewRenderLoop creates a loop ticking at roughly 60 frames per second.
func NewRenderLoop() *RenderLoop {
	return &RenderLoop{interval: time.Second / 60}
}

// Start begins invoking frame every tick until Stop. Starting an already
// running loop is a no-op.
func (r *RenderLoop) Start(frame func(now time.Time)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return
	}
	stop := make(chan struct{})
	stopped := make(chan struct{})
	r.stop = stop
	r.stopped = stopped
	go func() {
		defer close(stopped)
		t := time.NewTicker(r.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-t.C:
				frame(now)
			}
		}
	}()
}

// Stop cancels the loop and waits for the frame goroutine to exit. Safe to
// call on a loop that was never started.
func (r *RenderLoop) Stop() {
	r.mu.Lock()
	stop, stopped := r.stop, r.stopped
	r.stop, r.stopped = nil, nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

// Running reports whether the loop is currently started.
func (r *RenderLoop) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}
