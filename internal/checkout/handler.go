package checkout

import (
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func checkoutID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid checkout id")
	}
	return id, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]Checkout{"checkout": c})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	checkouts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": len(checkouts), "checkouts": checkouts})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := checkoutID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Checkout{"checkout": c})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := checkoutID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.svc.Cancel(r.Context(), id, userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Checkout{"checkout": c})
}
