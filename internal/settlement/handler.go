package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pokerbook/pokerbook/pkg/money"
	"github.com/pokerbook/pokerbook/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/preview", h.Preview)

	return r
}

// Preview handles POST /settlements/preview
// @Summary      Preview settlements
// @Description  Compute the transfers that would settle a list of buy-ins and cash-outs, without saving anything
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body PreviewRequest true "Session entries"
// @Success      200 {object} response.APIResponse{data=PreviewResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	balances, err := Balances(req.Entries)
	if err != nil {
		response.ValidationFailed(w, err.Error())
		return
	}

	settlements, err := h.service.Settle(r.Context(), req.Entries)
	if err != nil {
		WriteError(w, err)
		return
	}

	for i := range balances {
		balances[i].Balance = money.Round2(balances[i].Balance)
	}

	response.JSON(w, http.StatusOK, &PreviewResponse{
		Balances:    balances,
		Settlements: settlements,
	})
}

// WriteError maps settlement errors to responses. Other packages that settle
// sessions reuse it so the error codes stay consistent.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrZeroSumViolation):
		response.Unprocessable(w, "ZERO_SUM_VIOLATION", err.Error())
	case errors.Is(err, ErrValidation):
		response.ValidationFailed(w, err.Error())
	default:
		response.InternalError(w, "Failed to calculate settlements")
	}
}
