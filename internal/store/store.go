// Package store owns the persisted assignment records. All reads and writes
// for the assignment entity funnel through AssignmentStore; conflict-checked
// writes run inside the atomic scope opened by InTx.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/consultplan/consultplan/internal/models"
)

var (
	// ErrNotFound is returned when the requested assignment does not exist.
	ErrNotFound = errors.New("assignment not found")

	// ErrReferentialIntegrity is returned when an insert or update references
	// a consultant or project that does not exist.
	ErrReferentialIntegrity = errors.New("consultant or project does not exist")

	// ErrTransient marks lock contention, timeouts and serialization failures.
	// Callers may retry a bounded number of times; it must never be treated
	// as "no conflict".
	ErrTransient = errors.New("transient store error")
)

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	ConsultantID string
	ProjectID    string
}

// AssignmentStore is the persistence boundary for assignments. The scheduling
// package depends on this interface only, so tests can substitute an
// in-memory implementation.
//
// FindOverlapping, Insert and Update participate in the transaction opened by
// InTx when called on the store handle passed to the InTx callback; called on
// the root store they run as standalone operations.
type AssignmentStore interface {
	// InTx runs fn inside one atomic unit scoped to consultantID. The
	// implementation must guarantee that two concurrent InTx calls for the
	// same consultant cannot interleave their reads and writes.
	InTx(ctx context.Context, consultantID string, fn func(tx AssignmentStore) error) error

	// Insert writes a new assignment record.
	Insert(ctx context.Context, a *models.Assignment) error

	// FindOverlapping returns the consultant's non-terminal assignments whose
	// [StartTime, EndTime) window overlaps [start, end), excluding excludeID
	// when non-empty.
	FindOverlapping(ctx context.Context, consultantID string, start, end time.Time, excludeID string) ([]models.Assignment, error)

	// Get returns the assignment or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Assignment, error)

	// Update applies the given column values and returns the updated record.
	// Hours is recomputed when either time bound is present in fields.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error)

	// Remove hard-deletes the assignment or returns ErrNotFound.
	Remove(ctx context.Context, id string) error

	// List returns a page of assignments ordered by StartTime descending,
	// plus the total count matching the filter.
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]models.Assignment, int64, error)
}
