package worker

import (
	"context"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"taskManager/internal/service"
	"time"

	"go.uber.org/zap"
)

type TaskLister interface {
	ListTasks(ctx context.Context, filter service.ListTasksFilter) (*repository.TaskPage, error)
}

// OverdueWorker периодически просматривает задачи и пишет в лог те,
// что просрочены и не завершены. Статусы он не меняет — в схеме нет
// отдельного состояния "просрочено".
type OverdueWorker struct {
	tasks     TaskLister
	interval  time.Duration
	batchSize int
}

func NewOverdueWorker(tasks TaskLister, interval time.Duration, batchSize int) *OverdueWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OverdueWorker{
		tasks:     tasks,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) {
	start := time.Now()

	page, err := w.tasks.ListTasks(ctx, service.ListTasksFilter{
		Limit:     w.batchSize,
		SortBy:    "due_date",
		SortOrder: "asc",
	})
	if err != nil {
		logger.Warn("Worker: ошибка получения задач", zap.Error(err))
		return
	}

	today := models.Today()
	overdueCount := 0
	for _, t := range page.Items {
		if t.Status == models.StatusCompleted {
			continue
		}
		if t.DueDate.Before(today.Time) {
			overdueCount++
			logger.Warn("Worker: Просроченная задача",
				zap.String("task_id", t.ID),
				zap.String("due_date", t.DueDate.String()))
		}
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(page.Items)),
		zap.Int("overdue", overdueCount),
	)
}
