package handler

import (
	"fmt"

	"github.com/statloop/fplsync/internal/errs"
	"github.com/statloop/fplsync/internal/lib/job"
	"github.com/statloop/fplsync/internal/server"
	"github.com/statloop/fplsync/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SyncHandler exposes manual synchronization triggers and job status polling.
// Triggers only enqueue: the actual work runs on the background workers, and
// a duplicate trigger collapses onto the in-flight job's handle.
type SyncHandler struct {
	Handler
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(s *server.Server) *SyncHandler {
	return &SyncHandler{Handler: NewHandler(s)}
}

// SyncRequest selects what to synchronize. EventID is optional everywhere it
// applies: zero resolves to the current gameweek at execution time.
type SyncRequest struct {
	Kind         string `json:"kind" validate:"required,oneof=bootstrap fixtures live values entry tournament"`
	EventID      int    `json:"event_id" validate:"omitempty,min=1"`
	EntryID      int    `json:"entry_id" validate:"omitempty,min=1"`
	TournamentID int    `json:"tournament_id" validate:"omitempty,min=1"`
}

func (r *SyncRequest) Validate() error { return validation.Struct(r) }

// descriptor maps the request onto a job descriptor, enforcing the per-kind
// required ids that struct tags can't express.
func (r *SyncRequest) descriptor() (job.Descriptor, error) {
	d := job.Descriptor{Kind: "sync:" + r.Kind, Source: job.SourceManual}

	switch r.Kind {
	case "bootstrap":
		// Season-wide, no scope.
	case "fixtures", "live", "values":
		d.Scope = r.EventID
	case "entry":
		if r.EntryID == 0 {
			return d, errs.NewBadRequestError("entry_id is required for an entry sync")
		}
		d.Scope = r.EntryID
		d.Secondary = r.EventID
	case "tournament":
		if r.TournamentID == 0 {
			return d, errs.NewBadRequestError("tournament_id is required for a tournament sync")
		}
		d.Scope = r.EventID
		d.Secondary = r.TournamentID
	}

	return d, nil
}

// TriggerSync enqueues a sync job and returns its handle. Responds 202: the
// handle's id is what callers poll through GetJobStatus.
func (h *SyncHandler) TriggerSync(c echo.Context, req *SyncRequest) (dataResponse[*job.Handle], error) {
	d, err := req.descriptor()
	if err != nil {
		return dataResponse[*job.Handle]{}, err
	}

	handle, err := h.server.Job.Enqueue(c.Request().Context(), d)
	if err != nil {
		return dataResponse[*job.Handle]{}, errs.NewServiceUnavailableError(
			fmt.Sprintf("could not schedule %s sync", req.Kind))
	}
	return dataResponse[*job.Handle]{Data: handle}, nil
}

// JobStatusRequest identifies a job by the id returned from TriggerSync.
type JobStatusRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *JobStatusRequest) Validate() error { return validation.Struct(r) }

// jobStatusResponse reports a job's current lifecycle state.
type jobStatusResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// GetJobStatus reports the state of a previously enqueued sync job.
func (h *SyncHandler) GetJobStatus(c echo.Context, req *JobStatusRequest) (dataResponse[jobStatusResponse], error) {
	state, err := h.server.Job.Status(req.ID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return dataResponse[jobStatusResponse]{}, errs.NewNotFoundError("job not found")
		}
		return dataResponse[jobStatusResponse]{}, errs.NewServiceUnavailableError("job status unavailable")
	}

	return dataResponse[jobStatusResponse]{
		Data: jobStatusResponse{ID: req.ID, State: state},
	}, nil
}
