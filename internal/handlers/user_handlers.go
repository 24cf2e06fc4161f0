package handlers

import (
	"encoding/json"
	"net/http"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) UserHandler {
	return UserHandler{
		UserService: userService,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	responseWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithProblem(w, r, http.StatusUnsupportedMediaType,
			"Unsupported Media Type", "Content-Type must be application/json")
		return
	}

	var request dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Malformed request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	user, err := h.UserService.CreateUser(r.Context(), service.CreateUserInput{
		Name:     request.Name,
		Email:    request.Email,
		IsActive: request.IsActive,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Пользователь создан",
		zap.String("user_id", user.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	user, err := h.UserService.GetUserByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	responseWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	tasks, err := h.UserService.ListUserTasks(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	responseWithJSON(w, http.StatusOK, tasks)
}

func (h *UserHandler) UpdateUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	var request dto.UpdateUserRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		responseWithProblem(w, r, http.StatusUnprocessableEntity,
			httpTitle(http.StatusUnprocessableEntity), "Malformed request body: "+err.Error())
		return
	}

	options := []service.UserOption{}
	if request.Name != nil {
		options = append(options, service.WithName(*request.Name))
	}
	if request.Email != nil {
		options = append(options, service.WithEmail(*request.Email))
	}
	if request.IsActive != nil {
		options = append(options, service.WithIsActive(*request.IsActive))
	}

	user, err := h.UserService.UpdateUser(r.Context(), id, options...)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	responseWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Пользователь удалён", zap.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}
