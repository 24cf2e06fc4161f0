package handlers

import (
	"encoding/json"
	"net/http"
	"taskManager/internal/middleware"
	"time"
)

// ProblemDetails — единый формат всех 4xx/5xx ответов.
type ProblemDetails struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id"`
}

func responseWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func responseWithProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	problem := ProblemDetails{
		Type:      "about:blank#" + problemFragment(status),
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   middleware.GetTraceID(r.Context()),
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(problem)
}

func problemFragment(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not-found"
	case http.StatusUnprocessableEntity:
		return "validation"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}
