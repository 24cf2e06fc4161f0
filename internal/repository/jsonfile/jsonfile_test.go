package jsonfile_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"taskManager/internal/repository/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

func newStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	dir := t.TempDir()
	return jsonfile.New(filepath.Join(dir, "tasks.json"), filepath.Join(dir, "users.json"))
}

func newTask(title string) *models.Task {
	return &models.Task{
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
		DueDate:  models.Today(),
	}
}

// создаёт задачу в отдельной области и коммитит
func mustCreate(t *testing.T, store *jsonfile.Store, task *models.Task) {
	t.Helper()
	ctx := context.Background()

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, scope.Tasks().Add(ctx, task))
	require.NoError(t, scope.Commit(ctx))
}

// TestStore_HealthCheck тестирует проверку здоровья
func TestStore_HealthCheck(t *testing.T) {
	store := newStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

// TestStore_CreateAndGet тестирует создание и чтение после коммита
func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	task := newTask("Test Task")
	task.Description = "Test Description"
	mustCreate(t, store, task)

	// идентификатор и отметка времени заполнены репозиторием
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	retrieved, err := scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrieved.Title)
	assert.Equal(t, "Test Description", retrieved.Description)
	assert.Equal(t, models.StatusPending, retrieved.Status)
}

// TestStore_GetByID_NotFound тестирует чтение несуществующей задачи
func TestStore_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStore_GetByID_Idempotent повторное чтение возвращает те же данные
func TestStore_GetByID_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	task := newTask("Stable Task")
	mustCreate(t, store, task)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	first, err := scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	second, err := scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestStore_RollbackDiscards незакоммиченные изменения не видны
func TestStore_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	task := newTask("Uncommitted")
	require.NoError(t, scope.Tasks().Add(ctx, task))
	require.NoError(t, scope.Rollback(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStore_RollbackAfterCommit откат после коммита ничего не ломает
func TestStore_RollbackAfterCommit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	task := newTask("Committed")
	require.NoError(t, scope.Tasks().Add(ctx, task))
	require.NoError(t, scope.Commit(ctx))
	require.NoError(t, scope.Rollback(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetByID(ctx, task.ID)
	assert.NoError(t, err)
}

// TestStore_Update тестирует обновление и отметку updated_at
func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	task := newTask("Original Title")
	mustCreate(t, store, task)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	updated := *task
	updated.Title = "Updated Title"
	updated.Status = models.StatusInProgress
	require.NoError(t, scope.Tasks().Update(ctx, &updated))
	require.NoError(t, scope.Commit(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	retrieved, err := scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", retrieved.Title)
	assert.Equal(t, models.StatusInProgress, retrieved.Status)
	assert.NotNil(t, retrieved.UpdatedAt)
}

// TestStore_Update_NotFound обновление несуществующей задачи
func TestStore_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	missing := newTask("Ghost")
	missing.ID = "9999"
	assert.ErrorIs(t, scope.Tasks().Update(ctx, missing), repository.ErrNotFound)
}

// TestStore_Delete тестирует удаление
func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	task := newTask("Task to delete")
	mustCreate(t, store, task)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, scope.Tasks().Delete(ctx, task.ID))
	require.NoError(t, scope.Commit(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	page, err := scope.Tasks().GetAll(ctx, repository.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// повторное удаление — NotFound
	assert.ErrorIs(t, scope.Tasks().Delete(ctx, task.ID), repository.ErrNotFound)
}

// TestStore_Pagination проверяет инварианты has_next/has_previous
func TestStore_Pagination(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	total := 10
	for i := 0; i < total; i++ {
		mustCreate(t, store, newTask(fmt.Sprintf("Task %02d", i)))
	}

	tests := []struct {
		skip, limit int
	}{
		{0, 3},
		{3, 3},
		{9, 3},
		{0, 10},
		{10, 5},
		{20, 5},
	}

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	for _, tt := range tests {
		t.Run(fmt.Sprintf("skip=%d limit=%d", tt.skip, tt.limit), func(t *testing.T) {
			page, err := scope.Tasks().GetAll(ctx, repository.ListParams{Skip: tt.skip, Limit: tt.limit})
			require.NoError(t, err)

			assert.Equal(t, total, page.Total)
			assert.Equal(t, tt.skip+tt.limit < total, page.HasNext)
			assert.Equal(t, tt.skip > 0, page.HasPrevious)

			expected := total - tt.skip
			if expected < 0 {
				expected = 0
			}
			if expected > tt.limit {
				expected = tt.limit
			}
			assert.Len(t, page.Items, expected)
		})
	}
}

// TestStore_StatusFilter фильтр по статусу — точное совпадение
func TestStore_StatusFilter(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	pending := newTask("Pending Task")
	mustCreate(t, store, pending)

	done := newTask("Done Task")
	done.Status = models.StatusCompleted
	mustCreate(t, store, done)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	page, err := scope.Tasks().GetAll(ctx, repository.ListParams{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Done Task", page.Items[0].Title)
	assert.Equal(t, 1, page.Total)
}

// TestStore_Sorting сортировка по заголовку в обе стороны
func TestStore_Sorting(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, title := range []string{"banana", "apple", "cherry"} {
		mustCreate(t, store, newTask(title))
	}

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	page, err := scope.Tasks().GetAll(ctx, repository.ListParams{SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "apple", page.Items[0].Title)
	assert.Equal(t, "cherry", page.Items[2].Title)

	page, err = scope.Tasks().GetAll(ctx, repository.ListParams{SortBy: "title", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "cherry", page.Items[0].Title)
}

// TestStore_InvalidSortField неизвестное поле сортировки — ошибка в обоих бекендах
func TestStore_InvalidSortField(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetAll(ctx, repository.ListParams{SortBy: "nonsense"})
	assert.ErrorIs(t, err, repository.ErrInvalidSortField)
}

// TestStore_DurableReload коммит переживает пересоздание хранилища
func TestStore_DurableReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tasksPath := filepath.Join(dir, "tasks.json")
	usersPath := filepath.Join(dir, "users.json")

	store := jsonfile.New(tasksPath, usersPath)
	task := newTask("Persistent Task")
	mustCreate(t, store, task)

	// второй экземпляр читает тот же файл
	reopened := jsonfile.New(tasksPath, usersPath)
	scope, err := reopened.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	retrieved, err := scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persistent Task", retrieved.Title)
	assert.True(t, task.DueDate.Equal(retrieved.DueDate))
}

// TestStore_UserEmailConflict дубликат email — конфликт
func TestStore_UserEmailConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	first := &models.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, scope.Users().Add(ctx, first))

	second := &models.User{Name: "Another Alice", Email: "ALICE@example.com", IsActive: true}
	assert.ErrorIs(t, scope.Users().Add(ctx, second), repository.ErrConflict)

	require.NoError(t, scope.Rollback(ctx))
}

// TestStore_TaskUnknownOwner ссылка на несуществующего владельца отклоняется
func TestStore_TaskUnknownOwner(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	ghost := "no-such-user"

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	task := newTask("Orphaned Task")
	task.UserID = &ghost
	assert.ErrorIs(t, scope.Tasks().Add(ctx, task), repository.ErrNotFound)
	require.NoError(t, scope.Rollback(ctx))

	// перевесить существующую задачу на призрака тоже нельзя
	existing := newTask("Valid Task")
	mustCreate(t, store, existing)

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	updated := *existing
	updated.UserID = &ghost
	assert.ErrorIs(t, scope.Tasks().Update(ctx, &updated), repository.ErrNotFound)
}

// TestStore_UserCascadeDelete удаление пользователя забирает его задачи
func TestStore_UserCascadeDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	owner := &models.User{Name: "Bob", Email: "bob@example.com", IsActive: true}
	require.NoError(t, scope.Users().Add(ctx, owner))

	owned := newTask("Owned Task")
	owned.UserID = &owner.ID
	require.NoError(t, scope.Tasks().Add(ctx, owned))

	orphan := newTask("Free Task")
	require.NoError(t, scope.Tasks().Add(ctx, orphan))
	require.NoError(t, scope.Commit(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, scope.Users().Delete(ctx, owner.ID))
	require.NoError(t, scope.Commit(ctx))

	scope, err = store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Tasks().GetByID(ctx, owned.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = scope.Tasks().GetByID(ctx, orphan.ID)
	assert.NoError(t, err)
}

// TestStore_CommitWritesBothCollections один коммит подменяет оба файла
func TestStore_CommitWritesBothCollections(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tasksPath := filepath.Join(dir, "tasks.json")
	usersPath := filepath.Join(dir, "users.json")

	store := jsonfile.New(tasksPath, usersPath)
	scope, err := store.Begin(ctx)
	require.NoError(t, err)

	owner := &models.User{Name: "Dora", Email: "dora@example.com", IsActive: true}
	require.NoError(t, scope.Users().Add(ctx, owner))

	task := newTask("Dora's task")
	task.UserID = &owner.ID
	require.NoError(t, scope.Tasks().Add(ctx, task))
	require.NoError(t, scope.Commit(ctx))

	// оба файла на месте, временные копии убраны
	reopened := jsonfile.New(tasksPath, usersPath)
	scope, err = reopened.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	_, err = scope.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	_, err = scope.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestStore_SerializedScopes области выполняются последовательно
func TestStore_SerializedScopes(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	const writers = 5
	done := make(chan struct{}, writers)

	for i := 0; i < writers; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()

			scope, err := store.Begin(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			task := newTask(fmt.Sprintf("Concurrent %d", n))
			if err := scope.Tasks().Add(ctx, task); err != nil {
				t.Error(err)
				scope.Rollback(ctx)
				return
			}
			if err := scope.Commit(ctx); err != nil {
				t.Error(err)
			}
		}(i)
	}

	for i := 0; i < writers; i++ {
		<-done
	}

	scope, err := store.Begin(ctx)
	require.NoError(t, err)
	defer scope.Rollback(ctx)

	page, err := scope.Tasks().GetAll(ctx, repository.ListParams{})
	require.NoError(t, err)
	// при последовательных коммитах ни одна запись не теряется
	assert.Equal(t, writers, page.Total)
}
