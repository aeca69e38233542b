package player

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/pkg/response"
)

// Handler handles HTTP requests for player operations
type Handler struct {
	service *Service
}

// NewHandler creates a new player handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for player endpoints, mounted under /groups/{groupId}/players
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{playerId}", h.GetByID)

	return r
}

// Create handles POST /groups/{groupId}/players
// @Summary      Add a player
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body CreatePlayerRequest true "Player creation request"
// @Success      201 {object} response.APIResponse{data=PlayerResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/players [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req CreatePlayerRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	player, err := h.service.Create(r.Context(), groupID.String(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			response.ValidationFailed(w, err.Error())
		case errors.Is(err, ErrNameTaken):
			response.Conflict(w, err.Error())
		case errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create player")
		}
		return
	}

	response.JSON(w, http.StatusCreated, player.ToResponse())
}

// GetByID handles GET /groups/{groupId}/players/{playerId}
// @Summary      Get a player
// @Tags         players
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        playerId path string true "Player ID"
// @Success      200 {object} response.APIResponse{data=PlayerResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/players/{playerId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	playerID, err := uuid.Parse(chi.URLParam(r, "playerId"))
	if err != nil {
		response.BadRequest(w, "Invalid player ID")
		return
	}

	player, err := h.service.GetByID(r.Context(), groupID.String(), playerID.String())
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get player")
		return
	}

	response.JSON(w, http.StatusOK, player.ToResponse())
}

// List handles GET /groups/{groupId}/players
// @Summary      List players of a group
// @Tags         players
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]PlayerResponse}
// @Router       /groups/{groupId}/players [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	players, err := h.service.ListByGroup(r.Context(), groupID.String())
	if err != nil {
		response.InternalError(w, "Failed to list players")
		return
	}

	playerResponses := make([]*PlayerResponse, len(players))
	for i, p := range players {
		playerResponses[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusOK, playerResponses)
}
