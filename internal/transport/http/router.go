package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/watch-party/internal/transport/http/middleware"
	"github.com/cwrk-planet/watch-party/internal/transport/ws"
	"github.com/cwrk-planet/watch-party/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig, h *Handler, verifier httpmw.TokenVerifier, gateway *ws.Gateway) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(httputil.MiddlewareRequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", httputil.HeaderRequestID},
		ExposedHeaders:   []string{httputil.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// live connections authenticate with ?token=
	r.Get("/ws", gateway.HandleWS)
	r.Get("/ws/stats", gateway.HandleStats)

	r.Route("/api/watch-party", func(wp chi.Router) {
		wp.Use(middlewareChi.Timeout(cfg.RequestTimeout))

		wp.Get("/{roomCode}", h.GetRoom)

		wp.Group(func(pr chi.Router) {
			pr.Use(httpmw.Auth(verifier))

			pr.Post("/", h.CreateRoom)
			pr.Post("/{roomCode}/join", h.JoinRoom)
			pr.Delete("/{roomCode}", h.CloseRoom)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
