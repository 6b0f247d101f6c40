package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

// ErrorResponse is the common error body.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// currentUserID reads the user id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID.(string), true
}

// bindingDetails turns validator errors from gin's binding into the
// structured {field, reason} list the API promises.
func bindingDetails(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, domain.FieldError{
			Field:  fe.Field(),
			Reason: "failed validation rule: " + fe.Tag(),
		})
	}
	return details
}
