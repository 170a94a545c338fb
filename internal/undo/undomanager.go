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
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for one editor workspace
// (typically a serialized project manifest). Blob content is opaque to the
// manager; size is estimated as len(Blob). TS is when the snapshot was
// captured.
type Snapshot struct {
	Workspace string
	Blob      []byte
	TS        time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerWorkspace limits snapshots per workspace kept in memory (0 means unlimited).
	MaxPerWorkspace int
	// MinInterval coalesces snapshots captured within the interval for the
	// same workspace, replacing the previous one instead of pushing a new
	// entry. Drag gestures emit a snapshot per pointer-up, so this mostly
	// folds rapid successive nudges.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per workspace with
// performance safeguards. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-workspace stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a workspace. If within MinInterval from
// the last snapshot on the same workspace, it replaces the last one. Clears
// the redo stack for that workspace.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.Workspace]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.Workspace] = stack
			m.redo[s.Workspace] = nil
			m.enforceCapsLocked(s.Workspace)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[s.Workspace] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the workspace
	m.redo[s.Workspace] = nil
	m.enforceCapsLocked(s.Workspace)
}

// Undo pops from the workspace undo stack and pushes to the redo stack,
// returning the snapshot.
func (m *Manager) Undo(workspace string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[workspace]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[workspace] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[workspace] = append(m.redo[workspace], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(workspace string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[workspace]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[workspace] = r[:len(r)-1]
	m.undo[workspace] = append(m.undo[workspace], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(workspace)
	return s, true
}

// ClearWorkspace clears undo/redo stacks for a workspace to free memory.
func (m *Manager) ClearWorkspace(workspace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[workspace] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, workspace)
	delete(m.redo, workspace)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, workspaces int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	workspaces = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, workspaces, totalSnapshots
}

func (m *Manager) enforceCapsLocked(workspace string) {
	// Per-workspace depth cap
	if m.cfg.MaxPerWorkspace > 0 {
		stack := m.undo[workspace]
		if len(stack) > m.cfg.MaxPerWorkspace {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerWorkspace
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[workspace] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all workspaces
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestWS := ""
		oldestIdx := -1
		var oldestTS time.Time
		for ws, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestWS = ws
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestWS]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestWS] = stack[1:]
		if len(m.undo[oldestWS]) == 0 {
			delete(m.undo, oldestWS)
		}
	}
}
