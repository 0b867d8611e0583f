package httpadapter

import (
	"net/http"
)

// handleDonate credits the caller's donation to the campaign and returns
// the receipt, including the goal_reached event when this donation crossed
// the goal.
func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	donor, err := h.caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req donateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Value, req.Unit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	receipt, err := h.svc.Donate(r.Context(), campaignID(r), donor, amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toReceiptDTO(receipt))
}

// handleWithdraw moves the campaign balance to its organizer. Only the
// organizer may call it, once, after the goal has been reached.
func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	receipt, err := h.svc.Withdraw(r.Context(), campaignID(r), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toReceiptDTO(receipt))
}
