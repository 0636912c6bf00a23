package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/room-broker/internal/transport/ws"
	"github.com/cwrk-planet/room-broker/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Handler        *Handler
	WS             *ws.Server
	Metrics        http.Handler // nil — без /metrics
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.MiddlewareRequestID)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{httputil.HeaderRequestID},
		MaxAge:         300,
	}))

	// WS: мимо логирующего middleware, ему нужен Hijack
	if d.WS != nil {
		r.Get("/ws", d.WS.HandleWS)
		r.Get("/", d.WS.HandleWS)
	}

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r.Group(func(api chi.Router) {
		api.Use(httputil.MiddlewareMaxBody(maxBodyBytes))
		api.Use(httputil.MiddlewareLogging)
		api.Use(middleware.Timeout(timeout))

		api.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", d.Handler.CreateRoom)
			rm.Get("/", d.Handler.ListRooms)

			rm.Route("/{roomId}", func(rr chi.Router) {
				rr.Get("/", d.Handler.GetRoom)
				rr.Post("/token", d.Handler.IssueToken)
			})
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	return r
}
