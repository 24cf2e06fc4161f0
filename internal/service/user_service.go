package service

import (
	"context"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

type UserService struct {
	uow repository.UnitOfWork
}

func NewUserService(uow repository.UnitOfWork) UserService {
	return UserService{uow: uow}
}

type CreateUserInput struct {
	Name     string
	Email    string
	IsActive *bool
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	users, err := scope.Users().GetAll(ctx)
	if err != nil {
		return nil, translate(err, "User", "")
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	user, err := scope.Users().GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "User", id)
	}
	return user, nil
}

func (s *UserService) ListUserTasks(ctx context.Context, id string) ([]*models.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	// владелец должен существовать, иначе 404
	if _, err := scope.Users().GetByID(ctx, id); err != nil {
		return nil, translate(err, "User", id)
	}

	tasks, err := scope.Users().GetTasks(ctx, id)
	if err != nil {
		return nil, translate(err, "User", id)
	}
	return tasks, nil
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		IsActive: true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	if err := scope.Users().Add(ctx, user); err != nil {
		return nil, translate(err, "User", "")
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return nil, NewInternal(err)
	}

	logger.Info("Service: Пользователь создан", zap.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, options ...UserOption) (*models.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return nil, NewInternal(err)
	}
	defer scope.Rollback(ctx)

	user, err := scope.Users().GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "User", id)
	}

	merged := *user
	for _, opt := range options {
		opt(&merged)
	}
	if err := validateUser(&merged); err != nil {
		return nil, err
	}

	if err := scope.Users().Update(ctx, &merged); err != nil {
		return nil, translate(err, "User", id)
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return nil, NewInternal(err)
	}

	logger.Info("Service: Пользователь обновлён", zap.String("user_id", id))
	return &merged, nil
}

// Каскадное удаление задач пользователя делает сам бекенд.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		logger.Error("Service: Не удалось открыть область", err)
		return NewInternal(err)
	}
	defer scope.Rollback(ctx)

	if err := scope.Users().Delete(ctx, id); err != nil {
		return translate(err, "User", id)
	}
	if err := scope.Commit(ctx); err != nil {
		logger.Error("Service: Не удалось закоммитить область", err)
		return NewInternal(err)
	}

	logger.Info("Service: Пользователь удалён", zap.String("user_id", id))
	return nil
}

func validateUser(user *models.User) error {
	if user.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}
