package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithProblem(w, r, http.StatusServiceUnavailable,
			httpTitle(http.StatusServiceUnavailable), "Storage backend is unavailable")
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	page, err := h.TaskService.ListTasks(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(page.Items)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTaskPage(page))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithProblem(w, r, http.StatusUnsupportedMediaType,
			"Unsupported Media Type", "Content-Type must be application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Malformed request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	task, err := h.TaskService.CreateTask(r.Context(), service.CreateTaskInput{
		Title:       request.Title,
		Description: request.Description,
		Priority:    request.Priority,
		Status:      request.Status,
		DueDate:     request.DueDate,
		UserID:      request.UserID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", task.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if id == "" {
		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Task id must not be empty")
		return
	}

	task, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", task.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if id == "" {
		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Task id must not be empty")
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Malformed request body: "+err.Error())
		return
	}

	options := []service.TaskOption{}
	if request.Title != nil {
		options = append(options, service.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, service.WithDescription(*request.Description))
	}
	if request.Priority != nil {
		options = append(options, service.WithPriority(models.Priority(*request.Priority)))
	}
	if request.Status != nil {
		options = append(options, service.WithStatus(models.Status(*request.Status)))
	}
	if request.DueDate != nil {
		options = append(options, service.WithDueDate(*request.DueDate))
	}
	if request.UserID != nil {
		options = append(options, service.WithUserID(request.UserID))
	}

	task, err := h.TaskService.UpdateTask(r.Context(), id, options...)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", task.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if id == "" {
		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Task id must not be empty")
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func parseListFilter(w http.ResponseWriter, r *http.Request) (service.ListTasksFilter, bool) {
	query := r.URL.Query()
	filter := service.ListTasksFilter{
		Status:    query.Get("status"),
		Search:    query.Get("search"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
		Limit:     100,
	}

	if raw := query.Get("due_date"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			responseWithProblem(w, r, http.StatusUnprocessableEntity,
				httpTitle(http.StatusUnprocessableEntity), "due_date must be an ISO date (YYYY-MM-DD)")
			return filter, false
		}
		filter.DueDate = &parsed
	}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			responseWithProblem(w, r, http.StatusUnprocessableEntity,
				httpTitle(http.StatusUnprocessableEntity), "skip must be a non-negative integer")
			return filter, false
		}
		filter.Skip = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			responseWithProblem(w, r, http.StatusUnprocessableEntity,
				httpTitle(http.StatusUnprocessableEntity), "limit must be in range 1..1000")
			return filter, false
		}
		filter.Limit = limit
	}

	return filter, true
}
