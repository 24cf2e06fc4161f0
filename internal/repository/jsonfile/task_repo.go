package jsonfile

import (
	"context"
	"sort"
	"strings"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"github.com/google/uuid"
)

var priorityRank = map[models.Priority]int{
	models.PriorityLow:    0,
	models.PriorityMedium: 1,
	models.PriorityHigh:   2,
}

var statusRank = map[models.Status]int{
	models.StatusPending:    0,
	models.StatusInProgress: 1,
	models.StatusCompleted:  2,
}

// taskRepo работает со слепком коллекции внутри открытой области.
// Мутации остаются в памяти до коммита.
type taskRepo struct {
	doc *document
}

func (r *taskRepo) GetAll(ctx context.Context, params repository.ListParams) (*repository.TaskPage, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}

	filtered := []*models.Task{}
	for _, t := range r.doc.tasks {
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		filtered = append(filtered, t)
	}

	sortTasks(filtered, params.SortBy, params.SortOrder)

	total := len(filtered)
	from := params.Skip
	if from > total {
		from = total
	}
	to := from + params.Limit
	if to > total {
		to = total
	}

	return &repository.TaskPage{
		Items:       filtered[from:to],
		Total:       total,
		Skip:        params.Skip,
		Limit:       params.Limit,
		HasNext:     params.Skip+params.Limit < total,
		HasPrevious: params.Skip > 0,
	}, nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	for _, t := range r.doc.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *taskRepo) Add(ctx context.Context, taskToCreate *models.Task) error {
	if taskToCreate.ID == "" {
		taskToCreate.ID = uuid.NewString()
	}
	for _, t := range r.doc.tasks {
		if t.ID == taskToCreate.ID {
			return repository.ErrConflict
		}
	}
	if err := r.checkOwner(taskToCreate.UserID); err != nil {
		return err
	}

	taskToCreate.CreatedAt = time.Now()
	r.doc.tasks = append(r.doc.tasks, taskToCreate)
	return nil
}

func (r *taskRepo) Update(ctx context.Context, taskToUpdate *models.Task) error {
	if err := r.checkOwner(taskToUpdate.UserID); err != nil {
		return err
	}

	for i, t := range r.doc.tasks {
		if t.ID == taskToUpdate.ID {
			now := time.Now()
			taskToUpdate.UpdatedAt = &now
			r.doc.tasks[i] = taskToUpdate
			return nil
		}
	}
	return repository.ErrNotFound
}

// checkOwner проверяет ссылку на владельца так же, как внешний ключ
// в реляционном бекенде: несуществующий владелец — NotFound.
func (r *taskRepo) checkOwner(userID *string) error {
	if userID == nil {
		return nil
	}
	for _, u := range r.doc.users {
		if u.ID == *userID {
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	for i, t := range r.doc.tasks {
		if t.ID == id {
			r.doc.tasks = append(r.doc.tasks[:i], r.doc.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func sortTasks(tasks []*models.Task, sortBy, sortOrder string) {
	less := func(a, b *models.Task) bool {
		switch sortBy {
		case "id":
			return a.ID < b.ID
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "priority":
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		case "status":
			return statusRank[a.Status] < statusRank[b.Status]
		case "due_date":
			return a.DueDate.Before(b.DueDate.Time)
		case "updated_at":
			// записи без updated_at идут первыми
			if a.UpdatedAt == nil || b.UpdatedAt == nil {
				return b.UpdatedAt != nil
			}
			return a.UpdatedAt.Before(*b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if sortOrder == "desc" {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}
