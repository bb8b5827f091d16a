package services

import (
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/scheduling"
	"gorm.io/gorm"
)

type DashboardService struct {
	db       *gorm.DB
	calendar *CalendarService
}

func NewDashboardService(db *gorm.DB, calendar *CalendarService) *DashboardService {
	return &DashboardService{db: db, calendar: calendar}
}

type DashboardStatsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type DashboardStats struct {
	Consultants          int64   `json:"consultants"`
	AvailableConsultants int64   `json:"available_consultants"`
	ActiveProjects       int64   `json:"active_projects"`
	Assignments          int64   `json:"assignments"`
	BookedHours          float64 `json:"booked_hours"`
	WorkHoursPerPerson   float64 `json:"work_hours_per_person"`
	Utilization          float64 `json:"utilization"`
}

type ConsultantStats struct {
	ConsultantID   string  `json:"consultant_id"`
	ConsultantName string  `json:"consultant_name"`
	Assignments    int64   `json:"assignments"`
	BookedHours    float64 `json:"booked_hours"`
}

type DashboardResponse struct {
	Stats           DashboardStats    `json:"stats"`
	ConsultantStats []ConsultantStats `json:"consultant_stats"`
}

// GetStats aggregates headcount, booking volume and utilization for the
// requested date range (default: the coming 30 days).
func (s *DashboardService) GetStats(req *DashboardStatsRequest) (*DashboardResponse, error) {
	var startDate, endDate time.Time
	var err error

	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, &scheduling.ValidationError{Field: "start_date", Reason: "must be formatted YYYY-MM-DD"}
		}
	} else {
		startDate = time.Now()
	}

	if req.EndDate != "" {
		endDate, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, &scheduling.ValidationError{Field: "end_date", Reason: "must be formatted YYYY-MM-DD"}
		}
		endDate = endDate.Add(24*time.Hour - time.Second)
	} else {
		endDate = startDate.AddDate(0, 0, 30)
	}

	var stats DashboardStats

	s.db.Model(&models.Consultant{}).Count(&stats.Consultants)

	s.db.Model(&models.Consultant{}).
		Where("availability = ?", models.AvailabilityAvailable).
		Count(&stats.AvailableConsultants)

	s.db.Model(&models.Project{}).
		Where("status = ?", models.ProjectActive).
		Count(&stats.ActiveProjects)

	// Non-terminal assignments whose window touches the range.
	s.db.Model(&models.Assignment{}).
		Where("status NOT IN ?", models.TerminalStatuses).
		Where("start_time < ? AND end_time > ?", endDate, startDate).
		Count(&stats.Assignments)

	s.db.Model(&models.Assignment{}).
		Where("status NOT IN ?", models.TerminalStatuses).
		Where("start_time < ? AND end_time > ?", endDate, startDate).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&stats.BookedHours)

	if s.calendar != nil {
		stats.WorkHoursPerPerson = s.calendar.WorkHoursBetween(startDate, endDate)
		if stats.Consultants > 0 && stats.WorkHoursPerPerson > 0 {
			stats.Utilization = stats.BookedHours / (stats.WorkHoursPerPerson * float64(stats.Consultants))
		}
	}

	var consultantStats []ConsultantStats
	s.db.Model(&models.Assignment{}).
		Select("assignments.consultant_id, consultants.name as consultant_name, COUNT(*) as assignments, COALESCE(SUM(assignments.hours), 0) as booked_hours").
		Joins("JOIN consultants ON consultants.id = assignments.consultant_id").
		Where("assignments.status NOT IN ?", models.TerminalStatuses).
		Where("assignments.start_time < ? AND assignments.end_time > ?", endDate, startDate).
		Group("assignments.consultant_id, consultants.name").
		Order("booked_hours DESC").
		Scan(&consultantStats)

	return &DashboardResponse{
		Stats:           stats,
		ConsultantStats: consultantStats,
	}, nil
}
