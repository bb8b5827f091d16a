package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeTimeout bounds every standalone store call so no operation blocks
// indefinitely. Calls inside InTx inherit the transaction's context.
const storeTimeout = 5 * time.Second

// GormStore is the database-backed AssignmentStore.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InTx opens one transaction, takes the per-consultant lock and runs fn with
// a store handle bound to that transaction. On postgres the lock is an
// advisory xact lock keyed by consultant ID, released automatically at commit
// or rollback; on mysql the subsequent FindOverlapping locks the consultant's
// assignment rows FOR UPDATE; sqlite serializes writers on its own.
func (s *GormStore) InTx(ctx context.Context, consultantID string, fn func(tx AssignmentStore) error) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.db.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", advisoryLockKey(consultantID)).Error; err != nil {
				return fmt.Errorf("acquire consultant lock: %w", err)
			}
		}
		return fn(&GormStore{db: tx, inTx: true})
	})
	return classify(err)
}

// advisoryLockKey maps a consultant ID onto the int64 keyspace of
// pg_advisory_xact_lock.
func advisoryLockKey(consultantID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("assignments/"))
	h.Write([]byte(consultantID))
	return int64(h.Sum64())
}

func (s *GormStore) Insert(ctx context.Context, a *models.Assignment) error {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}
	return classify(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) FindOverlapping(ctx context.Context, consultantID string, start, end time.Time, excludeID string) ([]models.Assignment, error) {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}

	q := s.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Where("status NOT IN ?", models.TerminalStatuses).
		Where("start_time < ? AND end_time > ?", end, start)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	// Range-lock the candidate rows inside the atomic unit so a concurrent
	// check for the same consultant blocks until this one commits.
	if s.inTx && s.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var out []models.Assignment
	if err := q.Order("start_time").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Assignment, error) {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}

	var a models.Assignment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

func (s *GormStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}

	var a models.Assignment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}

	// Hours is derived: recompute when either time bound moves.
	_, startChanged := fields["start_time"]
	_, endChanged := fields["end_time"]
	if startChanged || endChanged {
		start := a.StartTime
		end := a.EndTime
		if v, ok := fields["start_time"].(time.Time); ok {
			start = v
		}
		if v, ok := fields["end_time"].(time.Time); ok {
			end = v
		}
		fields["hours"] = models.DurationHours(start, end)
	}

	if err := s.db.WithContext(ctx).Model(&a).Updates(fields).Error; err != nil {
		return nil, classify(err)
	}

	var updated models.Assignment
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &updated, nil
}

func (s *GormStore) Remove(ctx context.Context, id string) error {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}

	result := s.db.WithContext(ctx).Delete(&models.Assignment{}, "id = ?", id)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]models.Assignment, int64, error) {
	if !s.inTx {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, storeTimeout)
		defer cancel()
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Assignment{})
	if filter.ConsultantID != "" {
		q = q.Where("consultant_id = ?", filter.ConsultantID)
	}
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var items []models.Assignment
	offset := (page - 1) * pageSize
	err := q.Preload("Consultant").Preload("Project").
		Order("start_time DESC").
		Offset(offset).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, classify(err)
	}
	return items, total, nil
}

// classify maps driver errors onto the store's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrReferentialIntegrity) || errors.Is(err, ErrTransient) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	msg := err.Error()
	switch {
	case isForeignKeyViolation(msg):
		return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
	case isTransientFailure(msg):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// isForeignKeyViolation matches the FK error text of the three supported drivers.
func isForeignKeyViolation(msg string) bool {
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || // sqlite
		strings.Contains(msg, "violates foreign key constraint") || // postgres
		strings.Contains(msg, "a foreign key constraint fails") // mysql
}

// isTransientFailure matches lock contention and serialization errors that
// are safe to retry.
func isTransientFailure(msg string) bool {
	return strings.Contains(msg, "database is locked") || // sqlite busy
		strings.Contains(msg, "SQLSTATE 40001") || // serialization failure
		strings.Contains(msg, "SQLSTATE 40P01") || // deadlock detected
		strings.Contains(msg, "SQLSTATE 55P03") || // lock not available
		strings.Contains(msg, "Deadlock found") || // mysql 1213
		strings.Contains(msg, "Lock wait timeout") // mysql 1205
}
