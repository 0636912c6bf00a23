package httputil

import (
	"net/http"

	"github.com/cwrk-planet/room-broker/pkg/logger"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// MiddlewareRequestID — пробрасывает/генерирует X-Request-ID и кладёт в контекст
// логгер с req_id, так что его видят все логи хендлеров.
func MiddlewareRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		next.ServeHTTP(w, r.WithContext(logger.With(r.Context(), "req_id", reqID)))
	})
}
