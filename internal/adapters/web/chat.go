package web

import (
	"net/http"
)

type chatMessageRequest struct {
	MerchantID string `json:"merchant_id"`
	Message    string `json:"message"`
}

// chatMessage handles POST /api/chat. The assistant classifies the message,
// runs the matching operation for the merchant, and returns the structured
// result alongside the conversational reply.
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" || req.MerchantID == "" {
		writeError(w, r, "message and merchant_id are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Chat(r.Context(), req.MerchantID, req.Message)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
