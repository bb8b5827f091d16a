// Package scheduling is the sole gatekeeper of the double-booking invariant:
// for any consultant, no two non-terminal assignments may have overlapping
// [start, end) windows. Every create or schedule-affecting update goes
// through the Validator, which runs the overlap check and the write inside
// one atomic store transaction.
package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/store"
	"github.com/consultplan/consultplan/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	maxAttempts    = 3
	initialBackoff = 50 * time.Millisecond
)

// Validator decides whether proposed assignment windows can be accepted. It
// holds no state across calls; every decision is re-derived from a single
// read within the transaction that also performs the write.
type Validator struct {
	store store.AssignmentStore
	log   zerolog.Logger
}

func NewValidator(s store.AssignmentStore) *Validator {
	return &Validator{
		store: s,
		log:   logger.With("scheduling"),
	}
}

// CreateProposal is a proposed new assignment.
type CreateProposal struct {
	ConsultantID string
	ProjectID    string
	StartTime    time.Time
	EndTime      time.Time
	Notes        string
}

// Patch is a partial update. Nil fields keep their stored values. A patch
// touching ConsultantID, StartTime or EndTime re-runs the overlap check
// against the effective values; a status-only patch can only relax the
// invariant and skips it.
type Patch struct {
	ConsultantID *string
	ProjectID    *string
	StartTime    *time.Time
	EndTime      *time.Time
	Status       *string
	Notes        *string
}

// ScheduleAffecting reports whether applying the patch requires re-checking
// the double-booking invariant. Presence of the field is enough: the check is
// re-run even if the value equals the stored one.
func (p *Patch) ScheduleAffecting() bool {
	return p.ConsultantID != nil || p.StartTime != nil || p.EndTime != nil
}

// ProposeCreate accepts or rejects a new assignment. On acceptance the record
// is written with status "scheduled" and derived hours, in the same atomic
// unit as the overlap check.
func (v *Validator) ProposeCreate(ctx context.Context, req CreateProposal) (*models.Assignment, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, &ValidationError{Field: "end_time", Reason: "end time must be after start time"}
	}

	var created *models.Assignment
	err := v.withRetry(ctx, func() error {
		return v.store.InTx(ctx, req.ConsultantID, func(tx store.AssignmentStore) error {
			overlaps, err := tx.FindOverlapping(ctx, req.ConsultantID, req.StartTime, req.EndTime, "")
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				return &ConflictError{ConsultantID: req.ConsultantID, BlockingID: overlaps[0].ID}
			}

			a := &models.Assignment{
				ConsultantID: req.ConsultantID,
				ProjectID:    req.ProjectID,
				StartTime:    req.StartTime,
				EndTime:      req.EndTime,
				Hours:        models.DurationHours(req.StartTime, req.EndTime),
				Status:       models.StatusScheduled,
				Notes:        req.Notes,
			}
			if err := tx.Insert(ctx, a); err != nil {
				return err
			}
			created = a
			return nil
		})
	})
	if err != nil {
		return nil, v.mapStoreError(err)
	}

	v.log.Info().
		Str("assignment_id", created.ID).
		Str("consultant_id", created.ConsultantID).
		Time("start", created.StartTime).
		Time("end", created.EndTime).
		Msg("assignment created")
	return created, nil
}

// ProposeUpdate accepts or rejects a partial update of an existing
// assignment. Schedule-affecting patches re-run the overlap check against the
// effective consultant and window, excluding the record itself, inside the
// same atomic unit that applies the patch.
func (v *Validator) ProposeUpdate(ctx context.Context, id string, patch Patch) (*models.Assignment, error) {
	current, err := v.store.Get(ctx, id)
	if err != nil {
		return nil, v.mapStoreError(err)
	}

	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + *patch.Status}
	}

	fields := patch.fields()

	if !patch.ScheduleAffecting() {
		// Status or notes only: can only relax the invariant, no check needed.
		updated, err := v.store.Update(ctx, id, fields)
		if err != nil {
			return nil, v.mapStoreError(err)
		}
		return updated, nil
	}

	consultantID := current.ConsultantID
	if patch.ConsultantID != nil {
		consultantID = *patch.ConsultantID
	}
	start := current.StartTime
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	end := current.EndTime
	if patch.EndTime != nil {
		end = *patch.EndTime
	}

	if !start.Before(end) {
		return nil, &ValidationError{Field: "end_time", Reason: "end time must be after start time"}
	}

	var updated *models.Assignment
	err = v.withRetry(ctx, func() error {
		return v.store.InTx(ctx, consultantID, func(tx store.AssignmentStore) error {
			overlaps, err := tx.FindOverlapping(ctx, consultantID, start, end, id)
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				return &ConflictError{ConsultantID: consultantID, BlockingID: overlaps[0].ID}
			}

			updated, err = tx.Update(ctx, id, fields)
			return err
		})
	})
	if err != nil {
		return nil, v.mapStoreError(err)
	}

	v.log.Info().
		Str("assignment_id", updated.ID).
		Str("consultant_id", updated.ConsultantID).
		Msg("assignment updated")
	return updated, nil
}

// fields flattens the patch into store column values.
func (p *Patch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.ConsultantID != nil {
		fields["consultant_id"] = *p.ConsultantID
	}
	if p.ProjectID != nil {
		fields["project_id"] = *p.ProjectID
	}
	if p.StartTime != nil {
		fields["start_time"] = *p.StartTime
	}
	if p.EndTime != nil {
		fields["end_time"] = *p.EndTime
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	return fields
}

// withRetry re-runs fn on transient store failures with linear backoff.
// Conflicts and validation failures are returned immediately.
func (v *Validator) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, store.ErrTransient) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		v.log.Warn().Err(err).Int("attempt", attempt).Msg("transient store failure, retrying")
		select {
		case <-time.After(time.Duration(attempt) * initialBackoff):
		case <-ctx.Done():
			return &TransientError{Err: ctx.Err()}
		}
	}
	return err
}

// mapStoreError converts store sentinels into the scheduling error taxonomy.
// Scheduling's own typed errors pass through unchanged.
func (v *Validator) mapStoreError(err error) error {
	var conflict *ConflictError
	var validation *ValidationError
	if errors.As(err, &conflict) || errors.As(err, &validation) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Resource: "assignment"}
	case errors.Is(err, store.ErrReferentialIntegrity):
		return &NotFoundError{Resource: "consultant or project"}
	case errors.Is(err, store.ErrTransient):
		return &TransientError{Err: err}
	}
	return err
}
