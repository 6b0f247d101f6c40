package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository/memory"
	"github.com/lusohub/lusohub-backend/internal/usecase/compatibility"
)

const (
	selfID        = "5f0f2bfe-8f9c-4b6a-9a3c-0d9c7a1b2c3d"
	counterpartID = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
)

func newCompatibilityRouter(t *testing.T) (*gin.Engine, *memory.CompatibilityRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prefs := memory.NewPreferenceRepository()
	edges := memory.NewCompatibilityRepository()
	uc, err := compatibility.NewCompatibilityUseCase(
		prefs, edges, nil, compatibility.DefaultWeights(), zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.GET("/compatibility/:user_id", asUser(selfID), NewCompatibilityHandler(uc).GetCompatibility)
	return router, edges
}

func TestGetCompatibilityOK(t *testing.T) {
	router, edges := newCompatibilityRouter(t)

	require.NoError(t, edges.Upsert(context.Background(), &domain.CompatibilityEdge{
		UserAID: selfID, UserBID: counterpartID,
		OverallCompatibility: 77,
		SourceUpdatedAt:      time.Now(),
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compatibility/"+counterpartID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var edge domain.CompatibilityEdge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edge))
	assert.Equal(t, 77.0, edge.OverallCompatibility)
}

func TestGetCompatibilityValidation(t *testing.T) {
	router, _ := newCompatibilityRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "not a uuid", path: "/compatibility/not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "self comparison", path: "/compatibility/" + selfID, wantStatus: http.StatusBadRequest},
		{name: "edge not calculated yet", path: "/compatibility/" + counterpartID, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
