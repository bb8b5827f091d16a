package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/store"
	"github.com/google/uuid"
)

// memoryStore is an in-memory AssignmentStore for validator tests. InTx holds
// one mutex for the whole check-and-write, which gives the same isolation the
// database transaction provides. transientLeft injects retryable failures.
type memoryStore struct {
	mu            sync.Mutex
	records       map[string]models.Assignment
	transientLeft int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]models.Assignment)}
}

func (m *memoryStore) InTx(ctx context.Context, consultantID string, fn func(tx store.AssignmentStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transientLeft > 0 {
		m.transientLeft--
		return fmt.Errorf("%w: injected failure", store.ErrTransient)
	}
	return fn(&memoryTx{m})
}

func (m *memoryStore) Insert(ctx context.Context, a *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).Insert(ctx, a)
}

func (m *memoryStore) FindOverlapping(ctx context.Context, consultantID string, start, end time.Time, excludeID string) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).FindOverlapping(ctx, consultantID, start, end, excludeID)
}

func (m *memoryStore) Get(ctx context.Context, id string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).Get(ctx, id)
}

func (m *memoryStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).Update(ctx, id, fields)
}

func (m *memoryStore) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).Remove(ctx, id)
}

func (m *memoryStore) List(ctx context.Context, filter store.ListFilter, page, pageSize int) ([]models.Assignment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memoryTx{m}).List(ctx, filter, page, pageSize)
}

// all returns a snapshot of every record, for invariant assertions.
func (m *memoryStore) all() []models.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Assignment, 0, len(m.records))
	for _, a := range m.records {
		out = append(out, a)
	}
	return out
}

// memoryTx operates on the parent's map while the parent's mutex is held.
type memoryTx struct {
	parent *memoryStore
}

func (t *memoryTx) InTx(ctx context.Context, consultantID string, fn func(tx store.AssignmentStore) error) error {
	return fn(t)
}

func (t *memoryTx) Insert(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	t.parent.records[a.ID] = *a
	return nil
}

func (t *memoryTx) FindOverlapping(ctx context.Context, consultantID string, start, end time.Time, excludeID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range t.parent.records {
		if a.ConsultantID != consultantID || a.ID == excludeID || a.Terminal() {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (t *memoryTx) Get(ctx context.Context, id string) (*models.Assignment, error) {
	a, ok := t.parent.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (t *memoryTx) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	a, ok := t.parent.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	if v, ok := fields["consultant_id"].(string); ok {
		a.ConsultantID = v
	}
	if v, ok := fields["project_id"].(string); ok {
		a.ProjectID = v
	}
	timeChanged := false
	if v, ok := fields["start_time"].(time.Time); ok {
		a.StartTime = v
		timeChanged = true
	}
	if v, ok := fields["end_time"].(time.Time); ok {
		a.EndTime = v
		timeChanged = true
	}
	if timeChanged {
		a.Hours = models.DurationHours(a.StartTime, a.EndTime)
	}
	if v, ok := fields["status"].(string); ok {
		a.Status = v
	}
	if v, ok := fields["notes"].(string); ok {
		a.Notes = v
	}
	a.UpdatedAt = time.Now()

	t.parent.records[id] = a
	copied := a
	return &copied, nil
}

func (t *memoryTx) Remove(ctx context.Context, id string) error {
	if _, ok := t.parent.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.parent.records, id)
	return nil
}

func (t *memoryTx) List(ctx context.Context, filter store.ListFilter, page, pageSize int) ([]models.Assignment, int64, error) {
	var matched []models.Assignment
	for _, a := range t.parent.records {
		if filter.ConsultantID != "" && a.ConsultantID != filter.ConsultantID {
			continue
		}
		if filter.ProjectID != "" && a.ProjectID != filter.ProjectID {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.After(matched[j].StartTime) })

	total := int64(len(matched))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return nil, total, nil
	}
	endIdx := offset + pageSize
	if endIdx > len(matched) {
		endIdx = len(matched)
	}
	return matched[offset:endIdx], total, nil
}
