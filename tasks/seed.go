package tasks

import (
	"time"

	"taskdesk/models"
)

var (
	adminUser    = models.Assignee{ID: "1", Name: "Admin User"}
	employeeUser = models.Assignee{ID: "2", Name: "Employee User"}
)

// SeedTasks devolve a coleção de exemplo gravada quando não há tarefas salvas.
// Os prazos são relativos a now.
func SeedTasks(now time.Time) []models.Task {
	day := 24 * time.Hour
	return []models.Task{
		{
			ID:          "1",
			Title:       "Complete project proposal",
			Description: "Create a detailed proposal for the new client project",
			Deadline:    now.Add(day),
			Priority:    models.PriorityHigh,
			Status:      models.StatusInProgress,
			AssignedTo:  adminUser,
			CreatedBy:   "1",
		},
		{
			ID:          "2",
			Title:       "Review design mockups",
			Description: "Review and provide feedback on the new UI designs",
			Deadline:    now.Add(2 * day),
			Priority:    models.PriorityMedium,
			Status:      models.StatusPending,
			AssignedTo:  employeeUser,
			CreatedBy:   "1",
		},
		{
			ID:          "3",
			Title:       "Team meeting",
			Description: "Weekly team sync-up meeting",
			Deadline:    now.Add(-2 * time.Hour),
			Priority:    models.PriorityHigh,
			Status:      models.StatusCompleted,
			AssignedTo:  adminUser,
			CreatedBy:   "1",
		},
		{
			ID:          "4",
			Title:       "Update documentation",
			Description: "Update the project documentation with recent changes",
			Deadline:    now.Add(4 * day),
			Priority:    models.PriorityLow,
			Status:      models.StatusPending,
			AssignedTo:  employeeUser,
			CreatedBy:   "2",
		},
		{
			ID:          "5",
			Title:       "Prepare presentation",
			Description: "Create slides for the client presentation",
			Deadline:    now.Add(3 * day),
			Priority:    models.PriorityMedium,
			Status:      models.StatusInProgress,
			AssignedTo:  adminUser,
			CreatedBy:   "1",
		},
		{
			ID:          "6",
			Title:       "Code review",
			Description: "Review pull requests for the new feature",
			Deadline:    now.Add(-day),
			Priority:    models.PriorityHigh,
			Status:      models.StatusExpired,
			AssignedTo:  employeeUser,
			CreatedBy:   "1",
		},
	}
}
