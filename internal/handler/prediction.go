package handler

import (
	"net/http"

	"github.com/cissero/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// PredictionHandler handles prediction placement and balance endpoints.
type PredictionHandler struct {
	svc *service.PredictionService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{svc: svc}
}

type placeRequest struct {
	ParticipantID string `json:"participantId"`
	Amount        int64  `json:"amount"`
}

// Place handles POST /events/{id}/predictions.
func (h *PredictionHandler) Place(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req placeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.svc.PlacePrediction(r.Context(), user, service.PlaceInput{
		EventID:        chi.URLParam(r, "id"),
		ParticipantID:  req.ParticipantID,
		Amount:         req.Amount,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// ForEvent handles GET /events/{id}/predictions.
func (h *PredictionHandler) ForEvent(w http.ResponseWriter, r *http.Request) {
	preds, err := h.svc.EventPredictions(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, preds)
}

// Mine handles GET /predictions/me.
func (h *PredictionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.svc.UserPredictions(user.ID))
}

// Balance handles GET /me/balance.
func (h *PredictionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	b, err := h.svc.Balance(r.Context(), user.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, b)
}
