package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, priority, status, due_date, user_id, created_at, updated_at`

type taskRepo struct {
	tx pgx.Tx
}

// Идентификаторы в БД — bigint identity, наружу отдаются строкой.
// Нечисловая строка не может указывать на существующую запись.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, repository.ErrNotFound
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		id      int64
		userID  *int64
		dueDate time.Time
		t       models.Task
	)

	err := row.Scan(
		&id,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&dueDate,
		&userID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ID = strconv.FormatInt(id, 10)
	t.DueDate = models.DateOf(dueDate)
	if userID != nil {
		s := strconv.FormatInt(*userID, 10)
		t.UserID = &s
	}
	return &t, nil
}

func (r *taskRepo) GetAll(ctx context.Context, params repository.ListParams) (*repository.TaskPage, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}
	start := time.Now()

	// SortBy прошёл белый список в Normalize, подстановка безопасна
	query := fmt.Sprintf(`SELECT %s FROM tasks`, taskColumns)
	countQuery := `SELECT COUNT(id) FROM tasks`

	args := []any{}
	if params.Status != "" {
		query += ` WHERE status = $1`
		countQuery += ` WHERE status = $1`
		args = append(args, params.Status)
	}

	query += fmt.Sprintf(` ORDER BY %s %s LIMIT %d OFFSET %d`,
		params.SortBy, params.SortOrder, params.Limit, params.Skip)

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
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

	var total int
	if err := r.tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return nil, fmt.Errorf("подсчёт задач: %w", err)
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(params.Limit) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return &repository.TaskPage{
		Items:       tasks,
		Total:       total,
		Skip:        params.Skip,
		Limit:       params.Limit,
		HasNext:     params.Skip+params.Limit < total,
		HasPrevious: params.Skip > 0,
	}, nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	t, err := scanTask(r.tx.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (r *taskRepo) Add(ctx context.Context, taskToCreate *models.Task) error {
	start := time.Now()

	userID, err := nullableUserID(taskToCreate.UserID)
	if err != nil {
		return err
	}

	query := `INSERT INTO tasks
				(title, description, priority, status, due_date, user_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, created_at`

	var id int64
	err = r.tx.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Priority,
		taskToCreate.Status,
		taskToCreate.DueDate.Time,
		userID,
	).Scan(&id, &taskToCreate.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			// ссылка на несуществующего пользователя
			return repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	taskToCreate.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *taskRepo) Update(ctx context.Context, taskToUpdate *models.Task) error {
	taskID, err := parseID(taskToUpdate.ID)
	if err != nil {
		return err
	}

	userID, err := nullableUserID(taskToUpdate.UserID)
	if err != nil {
		return err
	}

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				status = $4,
				due_date = $5,
				user_id = $6,
				updated_at = NOW()
			WHERE id = $7
			RETURNING updated_at`

	err = r.tx.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Priority,
		taskToUpdate.Status,
		taskToUpdate.DueDate.Time,
		userID,
		taskID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	taskID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullableUserID(userID *string) (*int64, error) {
	if userID == nil {
		return nil, nil
	}
	n, err := parseID(*userID)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
