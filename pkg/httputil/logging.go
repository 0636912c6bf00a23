package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/room-broker/pkg/logger"
)

const (
	maxLoggedBody = 4 << 10
	redacted      = "***REDACTED***"
)

var redactedKeys = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"jwt":           {},
	"authorization": {},
	"secret":        {},
}

// MiddlewareLogging логирует метод, путь, статус, длительность, и тела
// запроса/ответа с затёртыми токенами. Не поддерживает Hijack: WS монтируется мимо него.
func MiddlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var reqBody string
		if isJSON(r.Header.Get("Content-Type")) && r.Body != nil {
			// в лог идёт только голова тела, остальное дочитывает хендлер
			head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
			r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
			reqBody = RedactJSON(head)
		}

		lrw := &logResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		var respBody string
		if isJSON(lrw.Header().Get("Content-Type")) {
			respBody = RedactJSON(lrw.body.Bytes())
		}

		lvl := slog.LevelInfo
		switch {
		case lrw.status >= http.StatusInternalServerError:
			lvl = slog.LevelError
		case lrw.status >= http.StatusBadRequest:
			lvl = slog.LevelWarn
		}
		logger.FromContext(r.Context()).Log(r.Context(), lvl, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.status,
			"bytes", lrw.bytes,
			"duration", time.Since(start).String(),
			"req_body", clip(reqBody, maxLoggedBody),
			"resp_body", clip(respBody, maxLoggedBody),
		)
	})
}

type readCloser struct {
	io.Reader
	io.Closer
}

// MiddlewareMaxBody ограничивает тело запроса n байтами.
func MiddlewareMaxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

type logResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
}

func (w *logResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *logResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n

	return n, err
}

// RedactJSON парсит тело в generic map/array и рекурсивно затирает значения по ключам.
func RedactJSON(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return "<non-json body>"
	}
	redactWalk(&data)
	out, err := json.Marshal(data)
	if err != nil {
		return "<unmarshallable>"
	}

	return string(out)
}

func redactWalk(v *any) {
	switch t := (*v).(type) {
	case map[string]any:
		for k, val := range t {
			if _, hit := redactedKeys[strings.ToLower(k)]; hit {
				t[k] = redacted
				continue
			}
			redactWalk(&val)
			t[k] = val
		}
	case []any:
		for i := range t {
			redactWalk(&t[i])
		}
	}
}

func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}

	return s[:n] + "...(truncated)"
}
