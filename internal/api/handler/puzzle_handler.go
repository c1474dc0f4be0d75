package handler

import (
	"encoding/json"
	"net/http"

	"huntserver/internal/api/middleware"
	"huntserver/internal/app/service"
	"huntserver/internal/common"

	"github.com/go-chi/chi/v5"
)

type PuzzleHandler struct {
	puzzleService *service.PuzzleService
}

func NewPuzzleHandler(ps *service.PuzzleService) *PuzzleHandler {
	return &PuzzleHandler{puzzleService: ps}
}

func (h *PuzzleHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createPuzzle)
	r.Get("/hunt/{huntID}", h.listByHunt)
	r.Put("/{puzzleID}/unlocks", h.setUnlocks)
	r.Get("/{puzzleID}/responses", h.listResponses)
	r.Post("/{puzzleID}/responses", h.addResponse)
	r.Get("/{puzzleID}/unlockables", h.listUnlockables)
	r.Post("/{puzzleID}/unlockables", h.addUnlockable)
}

func (h *PuzzleHandler) createPuzzle(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	puzzle, err := h.puzzleService.CreatePuzzle(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, puzzle)
}

func (h *PuzzleHandler) listByHunt(w http.ResponseWriter, r *http.Request) {
	puzzles, err := h.puzzleService.ListByHunt(r.Context(), chi.URLParam(r, "huntID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, puzzles)
}

func (h *PuzzleHandler) setUnlocks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unlocks []string `json:"unlocks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.puzzleService.SetUnlocks(r.Context(), chi.URLParam(r, "puzzleID"), req.Unlocks); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PuzzleHandler) listResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.puzzleService.ListResponses(r.Context(), chi.URLParam(r, "puzzleID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, responses)
}

func (h *PuzzleHandler) addResponse(w http.ResponseWriter, r *http.Request) {
	var req service.AddResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.puzzleService.AddResponse(r.Context(), chi.URLParam(r, "puzzleID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *PuzzleHandler) listUnlockables(w http.ResponseWriter, r *http.Request) {
	unlockables, err := h.puzzleService.ListUnlockables(r.Context(), chi.URLParam(r, "puzzleID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, unlockables)
}

func (h *PuzzleHandler) addUnlockable(w http.ResponseWriter, r *http.Request) {
	var req service.AddUnlockableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	u, err := h.puzzleService.AddUnlockable(r.Context(), chi.URLParam(r, "puzzleID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, u)
}
