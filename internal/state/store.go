// Package state records generation runs and the outputs they wrote, so
// unchanged packages can be skipped on the next run.
package state

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of a generating command.
type Run struct {
	ID          string
	Command     string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	// Packages is the number of packages the run visited.
	Packages int
	// Written is the number of files the run wrote.
	Written int
	Error   string
}

// Output is the last recorded generation of a package directory.
type Output struct {
	Dir        string
	Path       string
	SourceHash string
	OutputHash string
	Targets    []string
	RunID      string
	// GeneratedAt is set by the store when the output is recorded.
	GeneratedAt time.Time
}
