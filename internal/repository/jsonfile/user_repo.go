package jsonfile

import (
	"context"
	"strings"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"github.com/google/uuid"
)

type userRepo struct {
	doc *document
}

func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	return r.doc.users, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.doc.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks := []*models.Task{}
	for _, t := range r.doc.tasks {
		if t.UserID != nil && *t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *userRepo) Add(ctx context.Context, userToCreate *models.User) error {
	if userToCreate.ID == "" {
		userToCreate.ID = uuid.NewString()
	}
	for _, u := range r.doc.users {
		if u.ID == userToCreate.ID || strings.EqualFold(u.Email, userToCreate.Email) {
			return repository.ErrConflict
		}
	}

	userToCreate.CreatedAt = time.Now()
	r.doc.users = append(r.doc.users, userToCreate)
	return nil
}

func (r *userRepo) Update(ctx context.Context, userToUpdate *models.User) error {
	for _, u := range r.doc.users {
		if u.ID != userToUpdate.ID && strings.EqualFold(u.Email, userToUpdate.Email) {
			return repository.ErrConflict
		}
	}

	for i, u := range r.doc.users {
		if u.ID == userToUpdate.ID {
			now := time.Now()
			userToUpdate.UpdatedAt = &now
			r.doc.users[i] = userToUpdate
			return nil
		}
	}
	return repository.ErrNotFound
}

// Delete убирает пользователя и каскадно все его задачи —
// инвариант каскада обеспечивает бекенд, не сервис.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	found := false
	for i, u := range r.doc.users {
		if u.ID == id {
			r.doc.users = append(r.doc.users[:i], r.doc.users[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return repository.ErrNotFound
	}

	remaining := r.doc.tasks[:0]
	for _, t := range r.doc.tasks {
		if t.UserID != nil && *t.UserID == id {
			continue
		}
		remaining = append(remaining, t)
	}
	r.doc.tasks = remaining
	return nil
}
