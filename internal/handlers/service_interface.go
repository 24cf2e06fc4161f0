package handlers

import (
	"context"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"taskManager/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, filter service.ListTasksFilter) (*repository.TaskPage, error)
	CreateTask(ctx context.Context, input service.CreateTaskInput) (*models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, options ...service.TaskOption) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUserTasks(ctx context.Context, id string) ([]*models.Task, error)
	CreateUser(ctx context.Context, input service.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, options ...service.UserOption) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}
