package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/usecase/quiz"
)

type QuizHandler struct {
	quizUseCase *quiz.QuizUseCase
}

func NewQuizHandler(quizUseCase *quiz.QuizUseCase) *QuizHandler {
	return &QuizHandler{quizUseCase: quizUseCase}
}

// SubmitQuiz handles POST /quiz/submit
// @Summary Submit cultural compatibility quiz
// @Description Normalize quiz answers into a preference record and trigger match recomputation
// @Tags quiz
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body quiz.SubmitQuizRequest true "Quiz answers"
// @Success 201 {object} domain.PreferenceRecord
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req quiz.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Details: bindingDetails(err),
		})
		return
	}

	record, err := h.quizUseCase.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		if ve, isValidation := domain.AsValidationError(err); isValidation {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid quiz submission",
				Details: ve.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to save cultural preferences",
		})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetMyPreferences handles GET /quiz/preferences
// @Summary Get my cultural preferences
// @Tags quiz
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.PreferenceRecord
// @Failure 404 {object} ErrorResponse
// @Router /quiz/preferences [get]
func (h *QuizHandler) GetMyPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.quizUseCase.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "cultural preferences not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get cultural preferences"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteMyPreferences handles DELETE /quiz/preferences
// @Summary Delete my cultural preferences and all derived matches
// @Tags quiz
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /quiz/preferences [delete]
func (h *QuizHandler) DeleteMyPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.quizUseCase.DeletePreferences(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "cultural preferences not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete cultural preferences"})
		return
	}

	c.Status(http.StatusNoContent)
}
