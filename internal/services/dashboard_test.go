package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/scheduling"
	"gorm.io/gorm"
)

func seedDashboardData(t *testing.T, db *gorm.DB) {
	t.Helper()

	consultants := make([]models.Consultant, 2)
	for i := range consultants {
		consultants[i] = models.Consultant{
			Name:  fmt.Sprintf("Consultant %d", i+1),
			Email: fmt.Sprintf("d-%d-%d@test.dev", i, time.Now().UnixNano()),
		}
		if err := db.Create(&consultants[i]).Error; err != nil {
			t.Fatalf("seed consultant: %v", err)
		}
	}

	p := models.Project{Name: "Dashboard Project", Client: "Acme", Status: models.ProjectActive}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	// One in-range booking per consultant, one cancelled booking that must
	// not count, one booking outside the range.
	inRange := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	seedAssignment(t, db, consultants[0].ID, p.ID, models.StatusScheduled, inRange, inRange.Add(8*time.Hour))
	seedAssignment(t, db, consultants[1].ID, p.ID, models.StatusScheduled, inRange.AddDate(0, 0, 1), inRange.AddDate(0, 0, 1).Add(4*time.Hour))
	seedAssignment(t, db, consultants[0].ID, p.ID, models.StatusCancelled, inRange.Add(9*time.Hour), inRange.Add(11*time.Hour))
	outOfRange := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	seedAssignment(t, db, consultants[1].ID, p.ID, models.StatusScheduled, outOfRange, outOfRange.Add(8*time.Hour))
}

func TestDashboard_GetStats(t *testing.T) {
	db := openTestDB(t)
	seedDashboardData(t, db)

	svc := NewDashboardService(db, NewCalendarService("US"))
	resp, err := svc.GetStats(&DashboardStatsRequest{
		StartDate: "2024-03-11",
		EndDate:   "2024-03-15",
	})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if resp.Stats.Consultants != 2 {
		t.Errorf("consultants = %d, want 2", resp.Stats.Consultants)
	}
	if resp.Stats.ActiveProjects != 1 {
		t.Errorf("active projects = %d, want 1", resp.Stats.ActiveProjects)
	}
	if resp.Stats.Assignments != 2 {
		t.Errorf("assignments in range = %d, want 2", resp.Stats.Assignments)
	}
	if resp.Stats.BookedHours != 12 {
		t.Errorf("booked hours = %v, want 12", resp.Stats.BookedHours)
	}
	if resp.Stats.WorkHoursPerPerson <= 0 {
		t.Errorf("work hours per person = %v, want > 0", resp.Stats.WorkHoursPerPerson)
	}
	if resp.Stats.Utilization <= 0 {
		t.Errorf("utilization = %v, want > 0", resp.Stats.Utilization)
	}

	if len(resp.ConsultantStats) != 2 {
		t.Fatalf("consultant stats = %d rows, want 2", len(resp.ConsultantStats))
	}
	// Ordered by booked hours, largest first.
	if resp.ConsultantStats[0].BookedHours < resp.ConsultantStats[1].BookedHours {
		t.Error("consultant stats should be ordered by booked hours descending")
	}
}

func TestDashboard_RejectsMalformedDates(t *testing.T) {
	db := openTestDB(t)
	svc := NewDashboardService(db, NewCalendarService("US"))

	tests := []struct {
		name string
		req  DashboardStatsRequest
	}{
		{"bad start", DashboardStatsRequest{StartDate: "03/11/2024"}},
		{"bad end", DashboardStatsRequest{EndDate: "2024-13-45"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetStats(&tt.req)
			var validationErr *scheduling.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestDashboard_DefaultRange(t *testing.T) {
	db := openTestDB(t)

	svc := NewDashboardService(db, NewCalendarService("US"))
	resp, err := svc.GetStats(&DashboardStatsRequest{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if resp.Stats.Assignments != 0 {
		t.Errorf("assignments = %d, want 0 on empty database", resp.Stats.Assignments)
	}
}
