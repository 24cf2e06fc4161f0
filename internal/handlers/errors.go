package handlers

import (
	"errors"
	"net/http"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

// handleServiceError переводит BusinessError в problem-ответ.
// Всё остальное скрывается за generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		statusCode := mapBusinessErrorToHTTP(busErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", busErr.Code),
			zap.Int("http_status", statusCode),
			zap.String("trace_id", traceID(r)))

		detail := busErr.Message
		if busErr.Code == service.CodeInternal {
			detail = "An unexpected error occurred."
		}
		responseWithProblem(w, r, statusCode, httpTitle(statusCode), detail)
		return
	}

	logger.Error("HTTP: Неожиданная ошибка", err, zap.String("trace_id", traceID(r)))
	responseWithProblem(w, r, http.StatusInternalServerError,
		httpTitle(http.StatusInternalServerError), "An unexpected error occurred.")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusUnprocessableEntity
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func httpTitle(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusUnprocessableEntity:
		return "Validation Error"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	default:
		return "Internal Server Error"
	}
}
