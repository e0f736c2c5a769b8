package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-culture-routes/internal/api/explain"
	"github.com/FACorreiaa/go-culture-routes/internal/api/itinerary"
	llmInteraction "github.com/FACorreiaa/go-culture-routes/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-culture-routes/internal/api/poi"
)

// Config contains the handlers mounted by SetupRouter.
type Config struct {
	ItineraryHandler      *itinerary.HandlerImpl
	POIHandler            *poi.HandlerImpl
	ExplainHandler        *explain.HandlerImpl
	LlmInteractionHandler *llmInteraction.HandlerImpl
	// AIRateLimit guards the endpoints that call a completion provider. Nil disables it.
	AIRateLimit    func(http.Handler) http.Handler
	AllowedOrigins []string
}

// SetupRouter builds the application routes. Server-wide middleware (request id,
// logging, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.POIHandler != nil {
			r.Get("/map/pois", cfg.POIHandler.GetMapPois)
		}
		if cfg.LlmInteractionHandler != nil {
			r.Get("/ai/interactions", cfg.LlmInteractionHandler.ListInteractions)
		}

		r.Group(func(r chi.Router) {
			if cfg.AIRateLimit != nil {
				r.Use(cfg.AIRateLimit)
			}
			if cfg.ItineraryHandler != nil {
				r.Post("/routes/generate", cfg.ItineraryHandler.GenerateRoute)
			}
			if cfg.ExplainHandler != nil {
				r.Post("/ai/explain", cfg.ExplainHandler.Explain)
			}
		})
	})

	return r
}
