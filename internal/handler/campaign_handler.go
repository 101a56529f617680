// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/service"
)

// CampaignHandler holds the read-side HTTP handlers
type CampaignHandler struct {
	Service *service.CampaignService
	Logger  *zap.Logger
}

func (h *CampaignHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func ownerFromQuery(r *http.Request) model.Owner {
	q := r.URL.Query()
	return model.Owner{GroupSlug: q.Get("groupSlug"), BioguideID: q.Get("bioguideId")}
}

// ListCampaignsHandler serves ?groupSlug= / ?bioguideId= through the loader,
// or ?userId= straight from the store.
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	if userID := r.URL.Query().Get("userId"); userID != "" {
		campaigns, err := h.Service.ListForUser(r.Context(), userID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"campaigns": campaigns, "source": service.SourceLive})
		return
	}

	res, err := h.Service.ListForOwner(r.Context(), ownerFromQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *CampaignHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Overview(r.Context(), ownerFromQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, overview)
}

// GetCampaignHandler returns a single campaign by ID
func (h *CampaignHandler) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := h.Service.GetCampaign(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, campaign)
}

// DemographicsHandler also serves fallback seeds (negative ids) when the
// request names the owner the seed list was shown to.
func (h *CampaignHandler) DemographicsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	view, err := h.Service.Demographics(r.Context(), id, ownerFromQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, view)
}

func (h *CampaignHandler) BillCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	billType, billNumber := chi.URLParam(r, "billType"), chi.URLParam(r, "billNumber")

	campaigns, err := h.Service.CampaignsForBill(r.Context(), billType, billNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"bill":      model.BillKey(billType, billNumber),
		"campaigns": campaigns,
	})
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
