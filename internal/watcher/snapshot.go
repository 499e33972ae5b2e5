// Package watcher observes the user's desktop activity.
package watcher

import (
	"context"
	"os/exec"
	"strings"
)

// Snapshot is one point-in-time reading of the user's foreground context.
// Either field may be empty when the platform refuses to answer.
type Snapshot struct {
	Processes   []string
	WindowTitle string
}

// Snapshotter produces activity snapshots on demand.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// DesktopSnapshotter reads the active window title and the user's visible
// processes by shelling out. Capture failures are non-fatal; callers skip
// the tick and keep polling.
type DesktopSnapshotter struct{}

// NewDesktopSnapshotter creates the default platform snapshotter.
func NewDesktopSnapshotter() *DesktopSnapshotter {
	return &DesktopSnapshotter{}
}

// Snapshot captures the current activity. A partially-failed capture returns
// whatever was readable; a fully-failed capture returns an empty snapshot,
// never an error that would stop the poll loop.
func (d *DesktopSnapshotter) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if title, err := activeWindowTitle(ctx); err == nil {
		snap.WindowTitle = title
	}
	if procs, err := visibleProcesses(ctx); err == nil {
		snap.Processes = procs
	}

	return snap, nil
}

// activeWindowTitle asks the window manager for the focused window's title.
func activeWindowTitle(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// visibleProcesses lists command names of the user's processes, deduplicated.
func visibleProcesses(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, "ps", "-eo", "comm=").Output()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	procs := make([]string, 0)
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		procs = append(procs, name)
	}
	return procs, nil
}
