package summary

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/pkg/response"
)

// Handler handles HTTP requests for group statistics
type Handler struct {
	service *Service
}

// NewHandler creates a new summary handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for statistics endpoints, mounted under /groups/{groupId}/stats
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/leaderboard", h.Leaderboard)
	r.Get("/sessions/{sessionId}", h.SessionSummary)

	return r
}

// SessionSummary handles GET /groups/{groupId}/stats/sessions/{sessionId}
// @Summary      Get a session summary
// @Description  Ranking changes, highlights, streaks and milestones of an ended session
// @Tags         stats
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Success      200 {object} response.APIResponse{data=SessionSummary}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/stats/sessions/{sessionId} [get]
func (h *Handler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	summary, err := h.service.GetSessionSummary(r.Context(), groupID.String(), sessionID.String())
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrSessionNotEnded):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to build session summary")
		}
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// Leaderboard handles GET /groups/{groupId}/stats/leaderboard
// @Summary      Get the group leaderboard
// @Description  All-time standings ordered by total balance, then games played
// @Tags         stats
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]Standing}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/stats/leaderboard [get]
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	standings, err := h.service.Leaderboard(r.Context(), groupID.String())
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to build leaderboard")
		return
	}

	response.JSON(w, http.StatusOK, standings)
}
