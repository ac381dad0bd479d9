package payment

import (
	"net/http"

	"storefront-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.svc.PaymentMethods(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]Method{"methods": methods})
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var in InitiateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	res, err := h.svc.InitiatePayment(r.Context(), userID, in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
