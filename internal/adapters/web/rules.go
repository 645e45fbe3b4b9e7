package web

import (
	"net/http"
	"strconv"

	"insight-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// ruleRequest is the JSON body for notification rule creation. Threshold and
// enabled are optional; absent fields take the service defaults.
type ruleRequest struct {
	ProductName string `json:"productName"`
	Threshold   *int   `json:"threshold"`
	Enabled     *bool  `json:"enabled"`
	Units       string `json:"units"`
}

// ruleUpdateRequest is the JSON body for partial rule updates. Absent fields
// keep their stored values.
type ruleUpdateRequest struct {
	Threshold *int  `json:"threshold"`
	Enabled   *bool `json:"enabled"`
}

// ruleID extracts and parses the {ruleID} URL parameter.
func ruleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	return id, err == nil
}

// listRules handles GET /api/merchants/{merchantID}/notification-rules.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListRules(r.Context(), merchantID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createRule handles POST /api/merchants/{merchantID}/notification-rules.
func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	var body ruleRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateRule(r.Context(), app.CreateRuleRequest{
		MerchantID:  merchantID(r),
		ProductName: body.ProductName,
		Threshold:   body.Threshold,
		Enabled:     body.Enabled,
		Units:       body.Units,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// updateRule handles PUT /api/notification-rules/{ruleID}.
func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(r)
	if !ok {
		writeError(w, r, "invalid rule id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body ruleUpdateRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateRule(r.Context(), id, app.UpdateRuleRequest{
		Threshold: body.Threshold,
		Enabled:   body.Enabled,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deleteRule handles DELETE /api/notification-rules/{ruleID}.
func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(r)
	if !ok {
		writeError(w, r, "invalid rule id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteRule(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]int64{"deleted_rule_id": id})
}
