package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/notify"
)

// handleListEvents returns committed events with seq >= since. It accepts
// optional `since` and `limit` query parameters; invalid values result in
// HTTP 400.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since, err := queryInt(q.Get("since"), 0)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid 'since'", Code: "INVALID_QUERY"})
		return
	}
	limit, err := queryInt(q.Get("limit"), 0)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid 'limit'", Code: "INVALID_QUERY"})
		return
	}
	events, err := h.svc.Events(r.Context(), since, int(limit))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]eventDTO{"events": toEventDTOs(events)})
}

// handleStreamEvents streams committed events as server-sent events. The
// start point is `since`, or the Last-Event-ID header on reconnection, or
// "now" when neither is given; earlier events are never sent. The optional
// `campaign_id` parameter restricts the stream to one campaign.
func (h *Handler) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported", Code: "INTERNAL"})
		return
	}
	q := r.URL.Query()
	since, err := queryInt(q.Get("since"), 0)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid 'since'", Code: "INVALID_QUERY"})
		return
	}
	if last := r.Header.Get("Last-Event-ID"); last != "" {
		if seq, err := strconv.ParseInt(last, 10, 64); err == nil {
			since = seq + 1
		}
	}

	sub, err := h.events.Subscribe(r.Context(), notify.SubscribeOptions{
		From:       since,
		CampaignID: domain.CampaignID(q.Get("campaign_id")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(toEventDTO(e))
			if err != nil {
				h.logger.Error("encode event error", slog.Any("error", err))
				continue
			}
			if _, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Seq, e.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func queryInt(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
