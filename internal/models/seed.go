package models

import "time"

// SeedSampleData inserts demo consultants and projects when both tables are
// empty. Assignments are never seeded: they must go through the conflict
// validator.
func SeedSampleData() error {
	var consultantCount, projectCount int64
	DB.Model(&Consultant{}).Count(&consultantCount)
	DB.Model(&Project{}).Count(&projectCount)
	if consultantCount > 0 || projectCount > 0 {
		return nil
	}

	consultants := []Consultant{
		{Name: "John Smith", Email: "john.smith@consultplan.dev", Skills: "React,TypeScript,Node.js", HourlyRate: 75, Availability: AvailabilityAvailable},
		{Name: "Sarah Johnson", Email: "sarah.johnson@consultplan.dev", Skills: "Python,Django,PostgreSQL", HourlyRate: 80, Availability: AvailabilityAvailable},
		{Name: "Mike Chen", Email: "mike.chen@consultplan.dev", Skills: "Java,Spring Boot,AWS", HourlyRate: 85, Availability: AvailabilityBusy},
		{Name: "Emily Davis", Email: "emily.davis@consultplan.dev", Skills: "Vue.js,JavaScript,MongoDB", HourlyRate: 70, Availability: AvailabilityAvailable},
		{Name: "David Wilson", Email: "david.wilson@consultplan.dev", Skills: "C#,.NET,Azure", HourlyRate: 90, Availability: AvailabilityUnavailable},
	}
	for i := range consultants {
		if err := DB.Create(&consultants[i]).Error; err != nil {
			return err
		}
	}

	projects := []Project{
		{
			Name:        "E-commerce Platform",
			Client:      "TechCorp Inc.",
			Description: "Building a modern e-commerce platform with React and Node.js",
			StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
			Status:      ProjectActive,
			Budget:      150000,
		},
		{
			Name:        "Mobile Banking App",
			Client:      "FinanceFirst",
			Description: "Native mobile banking application for iOS and Android",
			StartDate:   time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
			Status:      ProjectPlanning,
			Budget:      220000,
		},
		{
			Name:        "Data Warehouse Migration",
			Client:      "RetailCo",
			Description: "Migrating the legacy warehouse to a cloud analytics stack",
			StartDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC),
			Status:      ProjectPlanning,
			Budget:      180000,
		},
	}
	for i := range projects {
		if err := DB.Create(&projects[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
