package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// One in-memory database per test; a single connection keeps every
	// session on the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Consultant{}, &models.Project{}, &models.Assignment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRefs(t *testing.T, db *gorm.DB) (consultantID, projectID string) {
	t.Helper()

	c := models.Consultant{Name: "Test Consultant", Email: fmt.Sprintf("c-%d@test.dev", time.Now().UnixNano())}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed consultant: %v", err)
	}
	p := models.Project{Name: "Test Project", Client: "Test Client"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return c.ID, p.ID
}

func window(hour int) (time.Time, time.Time) {
	start := time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC)
	return start, start.Add(2 * time.Hour)
}

func TestGormStore_InsertAndGet(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	a := &models.Assignment{
		ConsultantID: cid,
		ProjectID:    pid,
		StartTime:    start,
		EndTime:      end,
		Hours:        2,
		Status:       models.StatusScheduled,
	}
	if err := s.Insert(context.Background(), a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ConsultantID != cid {
		t.Errorf("consultant id = %q, expected %q", got.ConsultantID, cid)
	}
	if !got.StartTime.Equal(start) || !got.EndTime.Equal(end) {
		t.Errorf("window = [%v, %v), expected [%v, %v)", got.StartTime, got.EndTime, start, end)
	}
}

func TestGormStore_GetMissing(t *testing.T) {
	s := NewGormStore(openTestDB(t))

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGormStore_InsertEnforcesForeignKeys(t *testing.T) {
	s := NewGormStore(openTestDB(t))

	start, end := window(10)
	err := s.Insert(context.Background(), &models.Assignment{
		ConsultantID: "missing-consultant",
		ProjectID:    "missing-project",
		StartTime:    start,
		EndTime:      end,
	})
	if !errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}

func TestGormStore_FindOverlapping(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	existing := &models.Assignment{
		ConsultantID: cid,
		ProjectID:    pid,
		StartTime:    base,
		EndTime:      base.Add(2 * time.Hour),
		Status:       models.StatusScheduled,
	}
	if err := s.Insert(context.Background(), existing); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		overlap bool
	}{
		{"identical window", base, base.Add(2 * time.Hour), true},
		{"contained", base.Add(30 * time.Minute), base.Add(time.Hour), true},
		{"straddles end", base.Add(time.Hour), base.Add(3 * time.Hour), true},
		{"straddles start", base.Add(-time.Hour), base.Add(time.Hour), true},
		{"back-to-back after", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
		{"back-to-back before", base.Add(-time.Hour), base, false},
		{"disjoint", base.Add(5 * time.Hour), base.Add(6 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.FindOverlapping(context.Background(), cid, tc.start, tc.end, "")
			if err != nil {
				t.Fatalf("FindOverlapping: %v", err)
			}
			if (len(got) > 0) != tc.overlap {
				t.Errorf("overlap = %v, expected %v", len(got) > 0, tc.overlap)
			}
		})
	}
}

func TestGormStore_FindOverlapping_SkipsTerminal(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	for _, status := range []string{models.StatusCancelled, models.StatusCompleted} {
		if err := s.Insert(context.Background(), &models.Assignment{
			ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Status: status,
		}); err != nil {
			t.Fatalf("insert %s: %v", status, err)
		}
	}

	got, err := s.FindOverlapping(context.Background(), cid, start, end, "")
	if err != nil {
		t.Fatalf("FindOverlapping: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("terminal assignments should not overlap, got %d", len(got))
	}
}

func TestGormStore_FindOverlapping_ExcludesID(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	a := &models.Assignment{ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Status: models.StatusScheduled}
	if err := s.Insert(context.Background(), a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.FindOverlapping(context.Background(), cid, start, end, a.ID)
	if err != nil {
		t.Fatalf("FindOverlapping: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("record should not conflict with itself, got %d", len(got))
	}
}

func TestGormStore_UpdateRecomputesHours(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	a := &models.Assignment{
		ConsultantID: cid, ProjectID: pid,
		StartTime: start, EndTime: start.Add(8 * time.Hour),
		Hours: 8, Status: models.StatusScheduled,
	}
	if err := s.Insert(context.Background(), a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := s.Update(context.Background(), a.ID, map[string]interface{}{
		"end_time": start.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Hours != 4 {
		t.Errorf("hours = %v, expected 4", updated.Hours)
	}
}

func TestGormStore_UpdateStatusOnlyKeepsHours(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(9)
	a := &models.Assignment{ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Hours: 2, Status: models.StatusScheduled}
	if err := s.Insert(context.Background(), a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := s.Update(context.Background(), a.ID, map[string]interface{}{
		"status": models.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusCancelled {
		t.Errorf("status = %q, expected cancelled", updated.Status)
	}
	if updated.Hours != 2 {
		t.Errorf("hours = %v, expected unchanged 2", updated.Hours)
	}
}

func TestGormStore_UpdateMissing(t *testing.T) {
	s := NewGormStore(openTestDB(t))

	_, err := s.Update(context.Background(), "no-such-id", map[string]interface{}{"notes": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGormStore_Remove(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	a := &models.Assignment{ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Status: models.StatusScheduled}
	if err := s.Insert(context.Background(), a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.Remove(context.Background(), a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}

	if err := s.Remove(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestGormStore_List(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)
	otherCid, _ := seedRefs(t, db)

	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		owner := cid
		if i == 4 {
			owner = otherCid
		}
		start := base.Add(time.Duration(i*3) * time.Hour)
		if err := s.Insert(context.Background(), &models.Assignment{
			ConsultantID: owner, ProjectID: pid,
			StartTime: start, EndTime: start.Add(time.Hour),
			Status: models.StatusScheduled,
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	items, total, err := s.List(context.Background(), ListFilter{ConsultantID: cid}, 1, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, expected 4", total)
	}
	if len(items) != 3 {
		t.Errorf("page size = %d, expected 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].StartTime.After(items[i-1].StartTime) {
			t.Error("items should be ordered by start_time descending")
		}
	}

	// Second page holds the remainder.
	items, _, err = s.List(context.Background(), ListFilter{ConsultantID: cid}, 2, 3)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("page 2 size = %d, expected 1", len(items))
	}
}

func TestGormStore_InTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	sentinel := errors.New("abort")
	err := s.InTx(context.Background(), cid, func(tx AssignmentStore) error {
		if err := tx.Insert(context.Background(), &models.Assignment{
			ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Status: models.StatusScheduled,
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int64
	db.Model(&models.Assignment{}).Count(&count)
	if count != 0 {
		t.Errorf("insert should have rolled back, found %d rows", count)
	}
}

func TestGormStore_InTxReadsOwnWrites(t *testing.T) {
	db := openTestDB(t)
	s := NewGormStore(db)
	cid, pid := seedRefs(t, db)

	start, end := window(10)
	err := s.InTx(context.Background(), cid, func(tx AssignmentStore) error {
		if err := tx.Insert(context.Background(), &models.Assignment{
			ConsultantID: cid, ProjectID: pid, StartTime: start, EndTime: end, Status: models.StatusScheduled,
		}); err != nil {
			return err
		}
		got, err := tx.FindOverlapping(context.Background(), cid, start, end, "")
		if err != nil {
			return err
		}
		if len(got) != 1 {
			t.Errorf("expected the in-tx insert to be visible, got %d rows", len(got))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}
