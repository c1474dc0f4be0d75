package handler

import (
	"encoding/json"
	"net/http"

	"huntserver/internal/api/middleware"
	"huntserver/internal/app/service"
	"huntserver/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All submission routes require auth
	r.Post("/", h.gradeSubmission)
	r.Get("/team/{teamID}/puzzle/{puzzleID}", h.listForTeamPuzzle)
	r.Patch("/{submissionID}/response", h.updateResponseText)
}

func (h *SubmissionHandler) gradeSubmission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID   string `json:"team_id"`
		PuzzleID string `json:"puzzle_id"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.submissionService.GradeSubmission(r.Context(), req.TeamID, req.PuzzleID, req.Text)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) listForTeamPuzzle(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.ListForTeamPuzzle(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "puzzleID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) updateResponseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResponseText string `json:"response_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sub, err := h.submissionService.UpdateResponseText(r.Context(), chi.URLParam(r, "submissionID"), req.ResponseText)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}
