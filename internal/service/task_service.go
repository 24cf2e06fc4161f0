package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"unicode/utf8"

	"go.uber.org/zap"
)

// здесь живут бизнес-правила: фильтры, значения по умолчанию,
// частичное слияние и перевод ошибок репозитория в BusinessError

type TaskService struct {
	uow    repository.UnitOfWork
	health repository.HealthChecker
}

func NewTaskService(uow repository.UnitOfWork, health repository.HealthChecker) TaskService {
	return TaskService{
		uow:    uow,
		health: health,
	}
}

type ListTasksFilter struct {
	Status    string
	DueDate   *models.Date
	Search    string
	Skip      int
	Limit     int
	SortBy    string
	SortOrder string
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     *models.Date
	UserID      *string
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.health.HealthCheck(ctx)
}

// ListTasks отдаёт страницу из репозитория, после чего применяет
// фильтры по дате и подстроке заголовка на своей стороне.
// Пустой результат при валидном фильтре — это пустой список, не ошибка.
func (s *TaskService) ListTasks(ctx context.Context, filter ListTasksFilter) (*repository.TaskPage, error) {
	if filter.Status != "" && !models.Status(filter.Status).Valid() {
		return nil, NewValidationError("status", "must be one of pending, in_progress, completed")
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	page, err := scope.Tasks().GetAll(ctx, repository.ListParams{
		Skip:      filter.Skip,
		Limit:     filter.Limit,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
		Status:    models.Status(filter.Status),
	})
	if err != nil {
		return nil, translate(err, "Task", "")
	}

	if filter.DueDate != nil || filter.Search != "" {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		filtered := []*models.Task{}
		for _, t := range page.Items {
			if filter.DueDate != nil && !t.DueDate.Equal(*filter.DueDate) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
				continue
			}
			filtered = append(filtered, t)
		}
		page.Items = filtered
	}

	return page, nil
}

func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	task, err := buildTask(input)
	if err != nil {
		return nil, err
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	if err := scope.Tasks().Add(ctx, task); err != nil {
		// NotFound при вставке — битая ссылка на владельца
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("User", strPtrValue(input.UserID))
		}
		return nil, translate(err, "Task", task.ID)
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return nil, NewInternal(err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", task.ID))
	return task, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	task, err := scope.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Task", id)
	}
	return task, nil
}

// UpdateTask сливает только переданные опции поверх существующей записи.
func (s *TaskService) UpdateTask(ctx context.Context, id string, options ...TaskOption) (*models.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	task, err := scope.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Task", id)
	}

	merged := *task
	for _, opt := range options {
		opt(&merged)
	}
	if err := validateTask(&merged); err != nil {
		return nil, err
	}

	if err := scope.Tasks().Update(ctx, &merged); err != nil {
		// задача уже прочитана в этой области, поэтому NotFound
		// здесь означает битую ссылку на владельца
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("User", strPtrValue(merged.UserID))
		}
		return nil, translate(err, "Task", id)
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return nil, NewInternal(err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id))
	return &merged, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return NewInternal(err)
	}
	defer scope.Rollback(ctx)

	if err := scope.Tasks().Delete(ctx, id); err != nil {
		return translate(err, "Task", id)
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return NewInternal(err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	return nil
}

// translate сводит ошибки репозитория к таксономии сервиса.
// Всё незнакомое становится INTERNAL без деталей бекенда.
func translate(err error, resource, id string) error {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info("Service: Запись не найдена",
			zap.String("resource", resource),
			zap.String("target_id", id))
		return NewNotFound(resource, id)
	case errors.Is(err, repository.ErrInvalidSortField):
		return NewValidationError("sort_by", "unknown sort field")
	case errors.Is(err, repository.ErrConflict):
		if resource == "User" {
			return NewConflict("email", "email already registered")
		}
		return NewConflict("id", "duplicate identifier")
	default:
		logger.Error("Service: Неожиданная ошибка бекенда", err)
		return NewInternal(err)
	}
}

func buildTask(input CreateTaskInput) (*models.Task, error) {
	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		DueDate:     models.Today(),
		UserID:      input.UserID,
	}

	if input.Priority != "" {
		task.Priority = models.Priority(input.Priority)
	}
	if input.Status != "" {
		task.Status = models.Status(input.Status)
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func validateTask(task *models.Task) error {
	titleLen := utf8.RuneCountInString(task.Title)
	if titleLen < 2 || titleLen > 100 {
		return NewValidationError("title", "must be 2..100 characters")
	}
	if utf8.RuneCountInString(task.Description) > 300 {
		return NewValidationError("description", "must be at most 300 characters")
	}
	if !task.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("unknown priority %q", task.Priority))
	}
	if !task.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", task.Status))
	}
	return nil
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
