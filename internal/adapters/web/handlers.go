package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"insight-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Merchant profile and analytics ────────────────────────────────────────
	r.Get("/api/merchants/{merchantID}", h.getMerchant)
	r.Get("/api/merchants/{merchantID}/report/daily", h.getDailyReport)
	r.Get("/api/merchants/{merchantID}/anomalies", h.getAnomalies)
	r.Get("/api/merchants/{merchantID}/inventory", h.getInventory)

	// ── Notification rules ────────────────────────────────────────────────────
	r.Get("/api/merchants/{merchantID}/notification-rules", h.listRules)
	r.Post("/api/merchants/{merchantID}/notification-rules", h.createRule)
	r.Put("/api/notification-rules/{ruleID}", h.updateRule)
	r.Delete("/api/notification-rules/{ruleID}", h.deleteRule)

	// ── Stock mutation ────────────────────────────────────────────────────────
	r.Post("/api/merchants/{merchantID}/stock/update", h.updateStock)

	// ── Chat assistant ────────────────────────────────────────────────────────
	r.Post("/api/chat", h.chatMessage)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// merchantID extracts the {merchantID} URL parameter.
func merchantID(r *http.Request) string {
	return chi.URLParam(r, "merchantID")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
