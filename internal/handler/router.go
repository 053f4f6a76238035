package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/opencodex/codex-web/backend/internal/handler/chat"
	settingsHandler "github.com/opencodex/codex-web/backend/internal/handler/settings"
	middlewarePkg "github.com/opencodex/codex-web/backend/internal/middleware"
	settingsModel "github.com/opencodex/codex-web/backend/internal/model/settings"
	chatService "github.com/opencodex/codex-web/backend/internal/service/chat"
	"github.com/opencodex/codex-web/backend/internal/service/decision"
	"github.com/opencodex/codex-web/backend/internal/service/turn"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, coordinator *turn.Coordinator, reconciler *decision.Reconciler, settingsStore settingsModel.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(chatSvc, coordinator, reconciler, settingsStore).RegisterRoutes(api)
		settingsHandler.New(settingsStore).RegisterRoutes(api)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Open Codex Web Backend is running!"))
	})

	return r
}
