package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/controller"
)

// NewRouter wires every route. corsOrigins is the browser allow-list.
func NewRouter(ctrl *controller.CampaignController, h *CampaignHandler, logger *zap.Logger, corsOrigins []string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(logger))
	r.Use(AccessLog(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/campaigns", h.ListCampaignsHandler)
		r.Get("/campaigns/overview", h.OverviewHandler)
		r.Post("/campaigns", ctrl.CreateCampaign)
		r.Get("/campaigns/{id}", h.GetCampaignHandler)
		r.Put("/campaigns/{id}", ctrl.UpdateCampaign)
		r.Delete("/campaigns/{id}", ctrl.DeleteCampaign)
		r.Post("/campaigns/{id}/actions", ctrl.RecordAction)
		r.Get("/campaigns/{id}/demographics", h.DemographicsHandler)

		r.Get("/bills/{billType}/{billNumber}/campaigns", h.BillCampaignsHandler)
	})

	return r
}
