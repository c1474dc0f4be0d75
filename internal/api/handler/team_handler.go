package handler

import (
	"encoding/json"
	"net/http"

	"huntserver/internal/api/middleware"
	"huntserver/internal/app/service"
	"huntserver/internal/common"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService    *service.TeamService
	messageService *service.MessageService
}

func NewTeamHandler(ts *service.TeamService, ms *service.MessageService) *TeamHandler {
	return &TeamHandler{teamService: ts, messageService: ms}
}

func (h *TeamHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listTeams)
	r.Post("/", h.createTeam)
	r.Post("/join", h.joinTeam)
	r.Get("/me", h.myTeam)
	r.Post("/{teamID}/leave", h.leaveTeam)
	r.Get("/{teamID}/members", h.listMembers)
	r.Get("/{teamID}/puzzles", h.unlockedPuzzles)
	r.Get("/{teamID}/unlockables", h.listUnlockables)
	r.Get("/{teamID}/messages", h.listMessages)
	r.Post("/{teamID}/messages", h.createMessage)
}

func (h *TeamHandler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// Join codes are shared secrets; strip them from the listing.
	for i := range teams {
		teams[i].JoinCode = ""
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	personID, ok := middleware.GetPersonIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), personID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) joinTeam(w http.ResponseWriter, r *http.Request) {
	personID, ok := middleware.GetPersonIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		TeamName string `json:"team_name"`
		JoinCode string `json:"join_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	team, err := h.teamService.JoinTeam(r.Context(), personID, req.TeamName, req.JoinCode)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) myTeam(w http.ResponseWriter, r *http.Request) {
	personID, ok := middleware.GetPersonIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	team, err := h.teamService.TeamForPerson(r.Context(), personID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) leaveTeam(w http.ResponseWriter, r *http.Request) {
	personID, ok := middleware.GetPersonIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.teamService.LeaveTeam(r.Context(), personID, chi.URLParam(r, "teamID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TeamHandler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.teamService.ListMembers(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, members)
}

func (h *TeamHandler) unlockedPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := h.teamService.UnlockedPuzzles(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, puzzles)
}

func (h *TeamHandler) listUnlockables(w http.ResponseWriter, r *http.Request) {
	unlockables, err := h.teamService.ListUnlockables(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, unlockables)
}

func (h *TeamHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.ListForTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *TeamHandler) createMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		IsResponse bool   `json:"is_response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	msg, err := h.messageService.CreateMessage(r.Context(), chi.URLParam(r, "teamID"), req.Text, req.IsResponse)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, msg)
}
