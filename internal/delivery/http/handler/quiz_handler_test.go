package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository/memory"
	"github.com/lusohub/lusohub-backend/internal/usecase/quiz"
)

// asUser injects the authenticated user the way the auth middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newQuizRouter(t *testing.T) (*gin.Engine, *memory.PreferenceRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prefs := memory.NewPreferenceRepository()
	uc := quiz.NewQuizUseCase(prefs, memory.NewRecomputeQueue(16), zap.NewNop())
	h := NewQuizHandler(uc)

	router := gin.New()
	group := router.Group("/", asUser("user-1"))
	group.POST("/quiz/submit", h.SubmitQuiz)
	group.GET("/quiz/preferences", h.GetMyPreferences)
	group.DELETE("/quiz/preferences", h.DeleteMyPreferences)
	return router, prefs
}

func TestSubmitQuizCreated(t *testing.T) {
	router, _ := newQuizRouter(t)

	body := `{
		"origin": ["Brazilian"],
		"language_preference": "bilingual",
		"cultural_celebrations": ["carnival"],
		"cultural_values": ["family:9"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/quiz/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var record domain.PreferenceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, []string{"brazilian"}, record.Origins)
	assert.Equal(t, domain.RatingMap{"family": 9}, record.CulturalValues)
}

func TestSubmitQuizValidationDetails(t *testing.T) {
	router, _ := newQuizRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing origin", body: `{"language_preference": "bilingual"}`},
		{name: "blank origins", body: `{"origin": ["  "], "language_preference": "bilingual"}`},
		{name: "bad language", body: `{"origin": ["brazilian"], "language_preference": "spanish_first"}`},
		{name: "malformed json", body: `{"origin": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/quiz/submit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGetMyPreferencesLifecycle(t *testing.T) {
	router, prefs := newQuizRouter(t)

	// Nothing submitted yet.
	req := httptest.NewRequest(http.MethodGet, "/quiz/preferences", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, prefs.Upsert(context.Background(), &domain.PreferenceRecord{
		UserID:             "user-1",
		Origins:            []string{"brazilian"},
		LanguagePreference: domain.LanguageBilingual,
	}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/preferences", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/quiz/preferences", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Deleting twice reports not found.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/quiz/preferences", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
