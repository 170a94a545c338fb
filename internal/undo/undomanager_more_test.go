/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestClearWorkspaceAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerWorkspace: 10, MinInterval: time.Millisecond})
	ws := "music"
	m.PushSnapshot(Snapshot{Workspace: ws, Blob: []byte("abcdef"), TS: time.Now()})
	tb, workspaces, total := m.Stats()
	if tb == 0 || workspaces != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d workspaces=%d total=%d", tb, workspaces, total)
	}
	m.ClearWorkspace(ws)
	tb2, workspaces2, total2 := m.Stats()
	if tb2 != 0 || workspaces2 != 0 || total2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d workspaces=%d total=%d", tb2, workspaces2, total2)
	}
}

func TestGlobalPruneAcrossWorkspaces(t *testing.T) {
	// Very small MaxBytes so pruning triggers across workspaces
	m := NewManager(Config{MaxBytes: 8, MaxPerWorkspace: 0, MinInterval: time.Millisecond})
	t0 := time.Now()
	// Music workspace older snapshot
	m.PushSnapshot(Snapshot{Workspace: "music", Blob: []byte("xxxx"), TS: t0})
	// Film workspace newer snapshot
	m.PushSnapshot(Snapshot{Workspace: "film", Blob: []byte("yyyy"), TS: t0.Add(time.Second)})

	// Add another snapshot to exceed cap and force prune of oldest workspace snapshot
	m.PushSnapshot(Snapshot{Workspace: "film", Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	// After pruning, oldest (music) should be removed
	_, workspaces, total := m.Stats()
	if workspaces == 0 || total == 0 {
		t.Fatalf("expected some snapshots to remain")
	}
	// Undo on music should now be empty
	if _, ok := m.Undo("music"); ok {
		t.Fatalf("expected music workspace to have been pruned")
	}
	// Undo on film should still work
	if _, ok := m.Undo("film"); !ok {
		t.Fatalf("expected film workspace to have snapshots")
	}
}
