package service

import (
	"taskManager/internal/models"
)

// TaskOption — частичное обновление: хендлер собирает опции только
// из явно переданных полей, остальные поля записи не трогаются.
type TaskOption func(*models.Task)

func WithTitle(title string) TaskOption {
	return func(task *models.Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *models.Task) {
		task.Description = description
	}
}

func WithPriority(priority models.Priority) TaskOption {
	return func(task *models.Task) {
		task.Priority = priority
	}
}

func WithStatus(status models.Status) TaskOption {
	return func(task *models.Task) {
		task.Status = status
	}
}

func WithDueDate(dueDate models.Date) TaskOption {
	return func(task *models.Task) {
		task.DueDate = dueDate
	}
}

func WithUserID(userID *string) TaskOption {
	return func(task *models.Task) {
		task.UserID = userID
	}
}

type UserOption func(*models.User)

func WithName(name string) UserOption {
	return func(user *models.User) {
		user.Name = name
	}
}

func WithEmail(email string) UserOption {
	return func(user *models.User) {
		user.Email = email
	}
}

func WithIsActive(isActive bool) UserOption {
	return func(user *models.User) {
		user.IsActive = isActive
	}
}
