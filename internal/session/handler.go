package session

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/internal/settlement"
	"github.com/pokerbook/pokerbook/pkg/middleware"
	"github.com/pokerbook/pokerbook/pkg/response"
)

// Handler handles HTTP requests for session operations
type Handler struct {
	service *Service
}

// NewHandler creates a new session handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for session endpoints, mounted under /groups/{groupId}/sessions
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Route("/{sessionId}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Delete("/", h.Delete)
		r.Post("/players", h.AddPlayer)
		r.Post("/players/{playerId}/rebuys", h.Rebuy)
		r.Post("/end", h.End)
		r.Post("/reopen", h.Reopen)
	})

	return r
}

// Create handles POST /groups/{groupId}/sessions
// @Summary      Record a session
// @Description  Record a finished session with every cash-out (settled immediately) or start a live session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body CreateSessionRequest true "Session creation request"
// @Success      201 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupId", "Invalid group ID")
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	session, err := h.service.Create(r.Context(), groupID, userID, &req)
	if err != nil {
		writeError(w, err, "Failed to create session")
		return
	}

	response.JSON(w, http.StatusCreated, session.ToResponse())
}

// GetByID handles GET /groups/{groupId}/sessions/{sessionId}
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}

	session, err := h.service.GetByID(r.Context(), groupID, sessionID)
	if err != nil {
		writeError(w, err, "Failed to get session")
		return
	}

	response.JSON(w, http.StatusOK, session.ToResponse())
}

// List handles GET /groups/{groupId}/sessions
// @Summary      List sessions
// @Tags         sessions
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]SessionResponse}
// @Router       /groups/{groupId}/sessions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupId", "Invalid group ID")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	sessions, total, err := h.service.ListByGroup(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list sessions")
		return
	}

	sessionResponses := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		sessionResponses[i] = s.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, sessionResponses, response.NewMeta(page, perPage, total))
}

// AddPlayer handles POST /groups/{groupId}/sessions/{sessionId}/players
// @Summary      Add a player to a live session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Param        request body AddPlayerRequest true "Player and optional buy-in"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId}/players [post]
func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}

	var req AddPlayerRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	session, err := h.service.AddPlayer(r.Context(), groupID, sessionID, &req)
	if err != nil {
		writeError(w, err, "Failed to add player")
		return
	}

	response.JSON(w, http.StatusOK, session.ToResponse())
}

// Rebuy handles POST /groups/{groupId}/sessions/{sessionId}/players/{playerId}/rebuys
// @Summary      Record a rebuy
// @Description  Add chips for a player in a live session. The amount defaults to the group's default buy-in.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Param        playerId path string true "Player ID"
// @Param        request body RebuyRequest false "Optional rebuy amount"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId}/players/{playerId}/rebuys [post]
func (h *Handler) Rebuy(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}
	playerID, ok := parseID(w, r, "playerId", "Invalid player ID")
	if !ok {
		return
	}

	var req RebuyRequest
	if r.ContentLength != 0 {
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	session, err := h.service.Rebuy(r.Context(), groupID, sessionID, playerID, &req)
	if err != nil {
		writeError(w, err, "Failed to record rebuy")
		return
	}

	response.JSON(w, http.StatusOK, session.ToResponse())
}

// End handles POST /groups/{groupId}/sessions/{sessionId}/end
// @Summary      End a live session
// @Description  Record cash-outs, compute settlements and close the session in one transaction
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Param        request body EndSessionRequest true "Cash-outs"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId}/end [post]
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}

	var req EndSessionRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	session, err := h.service.End(r.Context(), groupID, sessionID, &req)
	if err != nil {
		writeError(w, err, "Failed to end session")
		return
	}

	response.JSON(w, http.StatusOK, session.ToResponse())
}

// Reopen handles POST /groups/{groupId}/sessions/{sessionId}/reopen
// @Summary      Reopen an ended session
// @Tags         sessions
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId}/reopen [post]
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}

	session, err := h.service.Reopen(r.Context(), groupID, sessionID)
	if err != nil {
		writeError(w, err, "Failed to reopen session")
		return
	}

	response.JSON(w, http.StatusOK, session.ToResponse())
}

// Delete handles DELETE /groups/{groupId}/sessions/{sessionId}
// @Summary      Delete a session
// @Tags         sessions
// @Param        groupId path string true "Group ID"
// @Param        sessionId path string true "Session ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/sessions/{sessionId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, sessionID, ok := parseSessionPath(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), groupID, sessionID); err != nil {
		writeError(w, err, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request, param, msg string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.BadRequest(w, msg)
		return "", false
	}
	return id.String(), true
}

func parseSessionPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	groupID, ok := parseID(w, r, "groupId", "Invalid group ID")
	if !ok {
		return "", "", false
	}
	sessionID, ok := parseID(w, r, "sessionId", "Invalid session ID")
	if !ok {
		return "", "", false
	}
	return groupID, sessionID, true
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrDuplicatePlayer):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrMissingCashOut),
		errors.Is(err, ErrPlayerNotInGroup),
		errors.Is(err, ErrPlayerNotInSession):
		response.ValidationFailed(w, err.Error())
	case errors.Is(err, ErrSessionNotLive), errors.Is(err, ErrSessionAlreadyLive):
		response.BadRequest(w, err.Error())
	case errors.Is(err, settlement.ErrZeroSumViolation), errors.Is(err, settlement.ErrValidation):
		settlement.WriteError(w, err)
	default:
		response.InternalError(w, fallback)
	}
}
