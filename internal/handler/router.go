package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/trade-trigger/internal/handler/feed"
	"github.com/zhouzirui/trade-trigger/internal/handler/messaging"
	"github.com/zhouzirui/trade-trigger/internal/metrics"
	"github.com/zhouzirui/trade-trigger/internal/service/agent"
	"github.com/zhouzirui/trade-trigger/internal/service/inbox"
	"github.com/zhouzirui/trade-trigger/pkg/utils"
)

// NewRouter wires the local messaging server routes.
func NewRouter(inboxSvc *inbox.Service, replier agent.Replier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	messagingHandler := messaging.New(inboxSvc, replier)
	feedHandler := feed.NewWebSocketHandler(inboxSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		messagingHandler.RegisterRoutes(api)
		feedHandler.RegisterRoutes(api)
	})

	return r
}
