/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestScriptSnapshotsHistory(t *testing.T) {
	root := t.TempDir()
	ph := &ProjectHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName)}
	ctx := context.Background()

	snap, err := GetLatestScriptSnapshot(ctx, ph)
	if err != nil {
		t.Fatalf("GetLatestScriptSnapshot on empty history: %v", err)
	}
	if snap.Text != "" || !snap.TS.IsZero() {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}

	base := time.Now()
	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("INT. STAGE - TAKE %d", i)
		if err := SaveScriptSnapshot(ctx, ph, text, base.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("SaveScriptSnapshot %d: %v", i, err)
		}
	}

	snap, err = GetLatestScriptSnapshot(ctx, ph)
	if err != nil {
		t.Fatalf("GetLatestScriptSnapshot: %v", err)
	}
	if snap.Text != "INT. STAGE - TAKE 4" {
		t.Fatalf("latest snapshot text: %q", snap.Text)
	}
	if snap.TS.IsZero() {
		t.Fatalf("latest snapshot has no timestamp")
	}

	list, err := ListScriptSnapshots(ctx, ph, 10)
	if err != nil || len(list) != 5 {
		t.Fatalf("ListScriptSnapshots got %d err %v", len(list), err)
	}
	if list[0].Text != "INT. STAGE - TAKE 4" || list[4].Text != "INT. STAGE - TAKE 0" {
		t.Fatalf("list not newest-first: %q .. %q", list[0].Text, list[4].Text)
	}

	n, err := PruneOldScriptSnapshots(ctx, ph, 2)
	if err != nil {
		t.Fatalf("PruneOldScriptSnapshots: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pruned, got %d", n)
	}
	list, err = ListScriptSnapshots(ctx, ph, 10)
	if err != nil || len(list) != 2 {
		t.Fatalf("post-prune list got %d err %v", len(list), err)
	}
	if list[0].Text != "INT. STAGE - TAKE 4" {
		t.Fatalf("prune dropped the wrong rows: %q", list[0].Text)
	}
}

func TestScriptSnapshotsNilHandle(t *testing.T) {
	ctx := context.Background()
	if err := SaveScriptSnapshot(ctx, nil, "x", time.Now()); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if _, err := GetLatestScriptSnapshot(ctx, nil); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if _, err := ListScriptSnapshots(ctx, nil, 1); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if _, err := PruneOldScriptSnapshots(ctx, nil, 1); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}
