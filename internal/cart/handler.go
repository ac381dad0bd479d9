package cart

import (
	"net/http"

	"storefront-be/internal/utils"

	"github.com/google/uuid"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func ownerFrom(r *http.Request) Owner {
	if id, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return Owner{UserID: &id}
	}
	return Owner{GuestID: utils.GetGuestIDFromContext(r.Context())}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), ownerFrom(r))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var in AddItemInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	c, err := h.svc.AddItem(r.Context(), ownerFrom(r), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateItemInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	c, err := h.svc.UpdateItem(r.Context(), ownerFrom(r), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID uuid.UUID `json:"productId"`
		Material  string    `json:"material"`
		Color     string    `json:"color"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	c, err := h.svc.RemoveItem(r.Context(), ownerFrom(r), in.ProductID, in.Material, in.Color)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	c, err := h.svc.Merge(r.Context(), userID, utils.GetGuestIDFromContext(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}
