package handler

import (
	"encoding/json"
	"net/http"

	"huntserver/internal/api/middleware"
	"huntserver/internal/app/service"
	"huntserver/internal/common"

	"github.com/go-chi/chi/v5"
)

type HuntHandler struct {
	huntService *service.HuntService
}

func NewHuntHandler(hs *service.HuntService) *HuntHandler {
	return &HuntHandler{huntService: hs}
}

func (h *HuntHandler) RegisterRoutes(r chi.Router) {
	r.Get("/current", h.currentHunt)
	r.Get("/", h.listHunts)
	r.Get("/{huntID}", h.getHunt)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createHunt)
		authed.Patch("/{huntID}", h.updateHunt)
		authed.Post("/{huntID}/current", h.setCurrent)
	})
}

func (h *HuntHandler) currentHunt(w http.ResponseWriter, r *http.Request) {
	hunt, err := h.huntService.Current(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hunt)
}

func (h *HuntHandler) getHunt(w http.ResponseWriter, r *http.Request) {
	hunt, err := h.huntService.GetHunt(r.Context(), chi.URLParam(r, "huntID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hunt)
}

func (h *HuntHandler) listHunts(w http.ResponseWriter, r *http.Request) {
	hunts, err := h.huntService.PreviousHunts(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hunts)
}

func (h *HuntHandler) createHunt(w http.ResponseWriter, r *http.Request) {
	var req service.CreateHuntRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hunt, err := h.huntService.CreateHunt(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, hunt)
}

func (h *HuntHandler) updateHunt(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateHuntRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hunt, err := h.huntService.UpdateHunt(r.Context(), chi.URLParam(r, "huntID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hunt)
}

func (h *HuntHandler) setCurrent(w http.ResponseWriter, r *http.Request) {
	hunt, err := h.huntService.SetCurrent(r.Context(), chi.URLParam(r, "huntID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hunt)
}
