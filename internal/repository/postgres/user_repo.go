package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = `id, name, email, is_active, created_at, updated_at`

type userRepo struct {
	tx pgx.Tx
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		id int64
		u  models.User
	)

	err := row.Scan(
		&id,
		&u.Name,
		&u.Email,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ID = strconv.FormatInt(id, 10)
	return &u, nil
}

func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id`, userColumns)

	rows, err := r.tx.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return users, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	u, err := scanUser(r.tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	ownerID, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, taskColumns)

	rows, err := r.tx.Query(ctx, query, ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи пользователя", err)
		return nil, fmt.Errorf("получение задач пользователя: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (r *userRepo) Add(ctx context.Context, userToCreate *models.User) error {
	query := `INSERT INTO users (name, email, is_active)
				VALUES ($1, $2, $3)
				RETURNING id, created_at`

	var id int64
	err := r.tx.QueryRow(ctx, query,
		userToCreate.Name,
		userToCreate.Email,
		userToCreate.IsActive,
	).Scan(&id, &userToCreate.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		logger.Error("Repository: Не удалось добавить пользователя", err)
		return fmt.Errorf("добавление пользователя: %w", err)
	}

	userToCreate.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *userRepo) Update(ctx context.Context, userToUpdate *models.User) error {
	userID, err := parseID(userToUpdate.ID)
	if err != nil {
		return err
	}

	query := `UPDATE users
			SET name = $1,
				email = $2,
				is_active = $3,
				updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at`

	err = r.tx.QueryRow(ctx, query,
		userToUpdate.Name,
		userToUpdate.Email,
		userToUpdate.IsActive,
		userID,
	).Scan(&userToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		logger.Error("Repository: Не удалось обновить пользователя", err)
		return fmt.Errorf("обновление пользователя: %w", err)
	}
	return nil
}

// Удаление пользователя каскадно удаляет его задачи — за счёт
// ON DELETE CASCADE в схеме, приложение задачи не трогает.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		logger.Error("Repository: Не удалось удалить пользователя", err)
		return fmt.Errorf("удаление пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
