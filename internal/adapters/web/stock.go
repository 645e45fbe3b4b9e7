package web

import (
	"net/http"

	"insight-engine/internal/app"
)

// stockUpdateRequest is the JSON body for a batch stock mutation.
type stockUpdateRequest struct {
	Updates []app.StockUpdateInput `json:"updates"`
}

// updateStock handles POST /api/merchants/{merchantID}/stock/update.
// The batch is applied item by item; invalid items are reported per item
// while valid ones land, so the response status field distinguishes a full
// success from a partial one.
func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	var body stockUpdateRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ApplyStockUpdates(r.Context(), app.StockUpdateRequest{
		MerchantID: merchantID(r),
		Updates:    body.Updates,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
