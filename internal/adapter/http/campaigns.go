package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

// handleCreateCampaign registers a new campaign owned by the caller. The
// goal is read in the requested unit (ether when omitted). It answers 201
// with the campaign snapshot.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req createCampaignRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	goal, err := parseAmount(req.Goal, req.Unit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Create(r.Context(), port.CreateCampaignReq{
		Title:       req.Title,
		Description: req.Description,
		Goal:        goal,
		Organizer:   caller,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/campaigns/%s", c.ID))
	h.writeJSON(w, http.StatusCreated, toCampaignDTO(c))
}

// handleListCampaigns returns the registry in creation order. By default
// only ids are returned; ?expand=true returns full snapshots.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	expand, _ := strconv.ParseBool(r.URL.Query().Get("expand"))
	if !expand {
		ids, err := h.svc.List(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, id.String())
		}
		h.writeJSON(w, http.StatusOK, map[string][]string{"campaigns": out})
		return
	}
	campaigns, err := h.svc.ListCampaigns(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]campaignDTO, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, toCampaignDTO(&campaigns[i]))
	}
	h.writeJSON(w, http.StatusOK, map[string][]campaignDTO{"campaigns": out})
}

// handleGetCampaign returns one campaign snapshot or 404.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignDTO(c))
}

// handleBalance returns the funds currently held by the campaign.
func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	balance, err := h.svc.Balance(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		CampaignID string    `json:"campaign_id"`
		Balance    amountDTO `json:"balance"`
	}{CampaignID: id.String(), Balance: toAmountDTO(balance)})
}

func campaignID(r *http.Request) domain.CampaignID {
	return domain.CampaignID(chi.URLParam(r, "id"))
}

// caller extracts the caller identity from the configured header.
func (h *Handler) caller(r *http.Request) (domain.Identity, error) {
	id := domain.NewIdentity(r.Header.Get(h.callerHeader))
	if id.IsZero() {
		return "", errMissingCaller
	}
	return id, nil
}

func parseAmount(value json.Number, unit string) (domain.Amount, error) {
	u := domain.UnitEther
	if unit != "" {
		var err error
		if u, err = domain.ParseUnit(unit); err != nil {
			return domain.Amount{}, err
		}
	}
	return domain.ParseAmount(value.String(), u)
}
