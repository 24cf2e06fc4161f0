package repository

import (
	"context"
	"taskManager/internal/models"
)

// Параметры постраничной выборки. Статус — точное совпадение,
// пустое значение отключает фильтр.
type ListParams struct {
	Skip      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" или "desc"
	Status    models.Status
}

const DefaultSortBy = "created_at"
const DefaultSortOrder = "desc"

// Поля, по которым разрешена сортировка в обоих бекендах.
var SortFields = map[string]bool{
	"id":         true,
	"title":      true,
	"priority":   true,
	"status":     true,
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
}

func (p *ListParams) Normalize() error {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder == "" {
		p.SortOrder = DefaultSortOrder
	}
	if !SortFields[p.SortBy] {
		return ErrInvalidSortField
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		return ErrInvalidSortField
	}
	return nil
}

type TaskPage struct {
	Items       []*models.Task
	Total       int
	Skip        int
	Limit       int
	HasNext     bool
	HasPrevious bool
}

type TaskRepository interface {
	GetAll(ctx context.Context, params ListParams) (*TaskPage, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Add(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetTasks(ctx context.Context, userID string) ([]*models.Task, error)
	Add(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// UnitOfWork открывает транзакционную область. Все мутации проходят
// только внутри открытой области и становятся долговечными по Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) (Scope, error)
}

// Scope — одна область: ровно один репозиторий каждого вида,
// Commit либо Rollback закрывают её. Области не вкладываются.
// Rollback после Commit безопасен и ничего не делает, поэтому
// сервис всегда может написать defer scope.Rollback(ctx).
type Scope interface {
	Tasks() TaskRepository
	Users() UserRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
