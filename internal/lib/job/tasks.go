package job

import (
	"fmt"
	"time"
)

// Task type names routed through the asynq mux. One type per sync operation.
const (
	TypeSyncBootstrap  = "sync:bootstrap"
	TypeSyncFixtures   = "sync:fixtures"
	TypeSyncLive       = "sync:live"
	TypeSyncValues     = "sync:values"
	TypeSyncEntry      = "sync:entry"
	TypeSyncTournament = "sync:tournament"
)

// Trigger sources recorded on every job descriptor. The source is metadata
// only: every trigger funnels through the same Enqueue path so deduplication
// works uniformly.
const (
	SourceManual  = "manual"
	SourceCron    = "cron"
	SourceCascade = "cascade"
)

// Job states reported by Status.
const (
	StatePending   = "pending"
	StateActive    = "active"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// TaskID derives the deterministic deduplication id for a sync job:
//
//	{kind}:{scope}[:t{secondary}]:{tag}
//
// Scope 0 means unscoped (season-wide). The trailing tag keeps jobs of the
// same kind and scope but different granularity apart: a per-event
// coordinator job and a per-event-per-tournament job must never collapse
// into each other. Trigger source is deliberately NOT part of the id.
func TaskID(kind string, scope, secondary int, tag string) string {
	id := kind
	if scope > 0 {
		id = fmt.Sprintf("%s:%d", id, scope)
	}
	if secondary > 0 {
		id = fmt.Sprintf("%s:t%d", id, secondary)
	}
	return id + ":" + tag
}

// Descriptor identifies one unit of synchronization work. It is the task
// payload; the derived TaskID is what deduplicates.
type Descriptor struct {
	Kind        string    `json:"kind"`
	Scope       int       `json:"scope,omitempty"`
	Secondary   int       `json:"secondary,omitempty"`
	Source      string    `json:"source"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// ID derives the descriptor's deduplication id.
func (d Descriptor) ID() string {
	return TaskID(d.Kind, d.Scope, d.Secondary, "coordinator")
}

// Handle is what Enqueue returns: enough for a caller to poll Status. When an
// identical descriptor is already pending or active, the existing job's
// handle comes back instead of a new execution.
type Handle struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Existing bool   `json:"existing"`
}

// Tally is the per-scope outcome report of a fan-out run. The three buckets
// always sum to the number of scopes attempted.
type Tally struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Total reports the number of scopes the tally covers.
func (t Tally) Total() int {
	return t.Synced + t.Skipped + t.Errors
}
