package web

import (
	"net/http"
	"strconv"
)

// getMerchant handles GET /api/merchants/{merchantID}.
func (h *Handler) getMerchant(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetMerchantOverview(r.Context(), merchantID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getDailyReport handles GET /api/merchants/{merchantID}/report/daily.
// Query parameters: date (YYYY-MM-DD, defaults to yesterday) and window
// (trend window in days, defaults to 7). A malformed window value falls
// back to the default rather than failing the request.
func (h *Handler) getDailyReport(w http.ResponseWriter, r *http.Request) {
	window := 0
	if v := r.URL.Query().Get("window"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			window = parsed
		}
	}

	result, err := h.svc.GetDailyReport(r.Context(), merchantID(r), r.URL.Query().Get("date"), window)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getAnomalies handles GET /api/merchants/{merchantID}/anomalies.
func (h *Handler) getAnomalies(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CheckAnomalies(r.Context(), merchantID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getInventory handles GET /api/merchants/{merchantID}/inventory.
func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInventory(r.Context(), merchantID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
