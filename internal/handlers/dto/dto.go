package dto

import (
	"taskManager/internal/models"
	"taskManager/internal/repository"
)

type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	DueDate     *models.Date `json:"due_date"`
	UserID      *string      `json:"user_id"`
}

// Указатели отличают "поле не передано" от "передано пустое":
// обновляются только явно присланные поля.
type UpdateTaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Priority    *string      `json:"priority,omitempty"`
	Status      *string      `json:"status,omitempty"`
	DueDate     *models.Date `json:"due_date,omitempty"`
	UserID      *string      `json:"user_id,omitempty"`
}

type TaskListResponse struct {
	Items       []*models.Task `json:"items"`
	Total       int            `json:"total"`
	Skip        int            `json:"skip"`
	Limit       int            `json:"limit"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func FromTaskPage(page *repository.TaskPage) TaskListResponse {
	return TaskListResponse{
		Items:       page.Items,
		Total:       page.Total,
		Skip:        page.Skip,
		Limit:       page.Limit,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
