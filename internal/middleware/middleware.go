package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"taskManager/internal/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const TraceIdKey contextKey = "trace_id"

// TraceID присваивает каждому запросу идентификатор трассировки.
// Входящий X-Trace-ID уважается, иначе генерируется новый.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceId := r.Header.Get("X-Trace-ID")
		if traceId == "" {
			traceId = uuid.New().String()
		}

		w.Header().Set("X-Trace-ID", traceId)

		ctx := context.WithValue(r.Context(), TraceIdKey, traceId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIdKey).(string); ok {
		return id
	}
	return ""
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}

	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceId := GetTraceID(r.Context())

		logger.Info(
			"HTTP_IN: Начало запроса",
			zap.String("trace_id", traceId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("client_ip", r.RemoteAddr),
		)

		lw := &loggingWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		next.ServeHTTP(lw, r)

		logLevel := zap.InfoLevel
		if lw.status >= 400 && lw.status < 500 {
			logLevel = zap.WarnLevel
		} else if lw.status >= 500 {
			logLevel = zap.ErrorLevel
		}
		logger.Log(
			logLevel,
			"HTTP_OUT: Завершение запроса",
			zap.String("trace_id", traceId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", lw.status),
			zap.Int("bytes_written", lw.size),
			zap.Duration("ms", time.Since(start)),
		)
	})
}

// Recovery превращает панику в problem-ответ 500, ничего не раскрывая.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("HTTP: Паника в обработчике", nil,
					zap.Any("panic", rec),
					zap.String("trace_id", GetTraceID(r.Context())),
					zap.String("path", r.URL.Path))

				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"type":      "about:blank#internal",
					"title":     "Internal Server Error",
					"status":    http.StatusInternalServerError,
					"detail":    "An unexpected error occurred.",
					"instance":  r.URL.Path,
					"timestamp": time.Now().UTC().Format(time.RFC3339),
					"trace_id":  GetTraceID(r.Context()),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

func RateLimit(rpm int) func(http.Handler) http.Handler {
	clients := make(map[string]*clientInfo)
	var mtx sync.Mutex
	window := time.Minute
	lastSweep := time.Now()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)
			now := time.Now()

			mtx.Lock()

			// раз в окно выметаем клиентов с истёкшим лимитом,
			// иначе карта растёт по одному входу на каждый IP
			if now.Sub(lastSweep) > window {
				for addr, c := range clients {
					if now.After(c.resetAt) {
						delete(clients, addr)
					}
				}
				lastSweep = now
			}

			info, exists := clients[ip]
			if !exists {
				info = &clientInfo{
					count:   1,
					resetAt: now.Add(window),
				}
				clients[ip] = info
			} else if now.After(info.resetAt) {
				info.count = 1
				info.resetAt = now.Add(window)
			} else {
				if info.count >= rpm {
					retryAfter := int(info.resetAt.Sub(now).Seconds())
					mtx.Unlock()

					w.Header().Set("Content-Type", "application/problem+json")
					w.WriteHeader(http.StatusTooManyRequests)
					json.NewEncoder(w).Encode(map[string]any{
						"type":      "about:blank#rate-limit",
						"title":     "Too Many Requests",
						"status":    http.StatusTooManyRequests,
						"detail":    "Rate limit exceeded, retry after " + strconv.Itoa(retryAfter) + "s",
						"instance":  r.URL.Path,
						"timestamp": time.Now().UTC().Format(time.RFC3339),
						"trace_id":  GetTraceID(r.Context()),
					})
					return
				}

				info.count++
			}

			remaining := rpm - info.count
			resetUnix := info.resetAt.Unix()

			mtx.Unlock()

			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
