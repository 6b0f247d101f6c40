package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/usecase/compatibility"
)

type CompatibilityHandler struct {
	compatUseCase *compatibility.CompatibilityUseCase
}

func NewCompatibilityHandler(compatUseCase *compatibility.CompatibilityUseCase) *CompatibilityHandler {
	return &CompatibilityHandler{compatUseCase: compatUseCase}
}

// GetCompatibility handles GET /compatibility/:user_id
// @Summary Get compatibility with another user
// @Description Stored compatibility edge between the current user and the given user
// @Tags compatibility
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "Counterpart user ID"
// @Success 200 {object} domain.CompatibilityEdge
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /compatibility/{user_id} [get]
func (h *CompatibilityHandler) GetCompatibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counterpartID := c.Param("user_id")
	if err := uuid.Validate(counterpartID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid user id",
			Details: []domain.FieldError{{Field: "user_id", Reason: "must be a valid UUID"}},
		})
		return
	}

	edge, err := h.compatUseCase.GetEdge(c.Request.Context(), userID, counterpartID)
	if err != nil {
		if errors.Is(err, domain.ErrSelfComparison) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid user id",
				Details: []domain.FieldError{{Field: "user_id", Reason: "cannot request compatibility with yourself"}},
			})
			return
		}
		if errors.Is(err, domain.ErrEdgeNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "compatibility not calculated yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get compatibility"})
		return
	}

	c.JSON(http.StatusOK, edge)
}
