package order

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

func orderID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid order id")
	}
	return id, nil
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	orders, err := h.svc.MyOrders(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": len(orders), "orders": orders})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.svc.Get(r.Context(), id, userID, utils.IsAdmin(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Order{"order": o})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": len(orders), "orders": orders})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var in UpdateStatusInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Order{"order": o})
}
