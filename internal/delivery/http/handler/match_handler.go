package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/usecase/matches"
)

type MatchHandler struct {
	matchUseCase *matches.MatchUseCase
}

func NewMatchHandler(matchUseCase *matches.MatchUseCase) *MatchHandler {
	return &MatchHandler{matchUseCase: matchUseCase}
}

// GetMatches handles GET /matches
// @Summary Get ranked cultural matches
// @Description Ranked, bounded match list for the current user
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param min_score query number false "Minimum overall compatibility (default from config)"
// @Param limit query int false "Maximum results (default from config)"
// @Success 200 {array} domain.MatchResult
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var policy domain.MatchPolicy
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 || minScore > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid query parameter",
				Details: []domain.FieldError{{Field: "min_score", Reason: "must be a number in [0,100]"}},
			})
			return
		}
		policy.MinCompatibilityScore = minScore
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid query parameter",
				Details: []domain.FieldError{{Field: "limit", Reason: "must be a positive integer"}},
			})
			return
		}
		policy.MaxMatches = limit
	}

	results, err := h.matchUseCase.GetMatches(c.Request.Context(), userID, policy)
	if err != nil {
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "complete the cultural quiz first"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get matches"})
		return
	}

	c.JSON(http.StatusOK, results)
}
