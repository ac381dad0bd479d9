package product

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

func productID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid product id")
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), r.URL.Query().Get("category"), utils.IsAdmin(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": len(products), "products": products})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id, utils.IsAdmin(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Product{"product": p})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	p, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]Product{"product": p})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]Product{"product": p})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	products, err := h.svc.Similar(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]Product{"similarProducts": products})
}

func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.BestSellers(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]Product{"bestSellers": products})
}

func (h *Handler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.NewArrivals(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]Product{"newArrivals": products})
}
