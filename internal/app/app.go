package app

import (
	"context"
	"fmt"
	"net/http"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository"
	"taskManager/internal/repository/jsonfile"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"
	"taskManager/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown, в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	uow, health, err := a.buildStorage(ctx)
	if err != nil {
		return err
	}

	taskService := service.NewTaskService(uow, health)
	userService := service.NewUserService(uow)
	taskHandler := handlers.NewTaskHandler(&taskService)
	userHandler := handlers.NewUserHandler(&userService)

	a.router = buildRouter(&taskHandler, &userHandler)

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(&taskService, a.config.Worker.Interval, a.config.Worker.BatchSize)
	}

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}
	return nil
}

// buildStorage выбирает бекенд по repository.type.
func (a *App) buildStorage(ctx context.Context) (repository.UnitOfWork, repository.HealthChecker, error) {
	switch a.config.Repository.Type {
	case "postgres":
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return nil, nil, err
		}

		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return nil, nil, err
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, storage, nil

	case "jsonfile":
		store := jsonfile.New(a.config.Repository.TasksPath, a.config.Repository.UsersPath)
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("неизвестный тип репозитория: %q", a.config.Repository.Type)
	}
}

func buildRouter(taskHandler *handlers.TaskHandler, userHandler *handlers.UserHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.TraceID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
	}))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)  // GET /tasks
		r.Post("/", taskHandler.PostTask)  // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)  // GET /users
		r.Post("/", userHandler.PostUser)  // POST /users

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.GetUserByID)       // GET /users/{id}
			r.Put("/", userHandler.UpdateUserByID)    // PUT /users/{id}
			r.Delete("/", userHandler.DeleteUserByID) // DELETE /users/{id}

			r.Get("/tasks", userHandler.GetUserTasks) // GET /users/{id}/tasks
		})
	})

	r.Get("/health", taskHandler.HealthCheck)
	return r
}

func (a *App) Run(ctx context.Context) error {
	if a.worker != nil {
		go a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен на " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("сервер: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Остановка сервера...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
