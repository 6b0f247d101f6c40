package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository/memory"
)

func newTestQuizUseCase(t *testing.T) (*QuizUseCase, *memory.PreferenceRepository, *memory.RecomputeQueue) {
	t.Helper()
	prefs := memory.NewPreferenceRepository()
	queue := memory.NewRecomputeQueue(16)
	return NewQuizUseCase(prefs, queue, zap.NewNop()), prefs, queue
}

func TestSubmitComputesDerivedScores(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)

	record, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:               []string{"brazilian"},
		LanguagePreference:   "english_first",
		CulturalCelebrations: []string{"festa junina", "fado"},
		Lifestyle:            []string{"social_butterfly"},
	})
	require.NoError(t, err)

	// 40 base + 10 for one origin + 10 for two celebrations, no language bonus.
	assert.Equal(t, 60.0, record.CulturalDepthScore)
	// 30 base + 15 for one engaged lifestyle tag.
	assert.Equal(t, 45.0, record.CommunityEngagementScore)
	assert.Equal(t, domain.CurrentQuizVersion, record.QuizVersion)
	assert.False(t, record.CompletedAt.IsZero())
	assert.False(t, record.LastUpdated.IsZero())
}

func TestSubmitScoresStayInBounds(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)

	record, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:             []string{"brazilian", "portuguese", "cape_verdean", "angolan"},
		LanguagePreference: "portuguese_first",
		CulturalCelebrations: []string{
			"carnival", "festa junina", "fado", "santos populares",
			"festa do divino", "sao joao", "festa da flor", "vindimas",
		},
		ProfessionalGoals: []string{"networking", "mentorship", "entrepreneurship", "career_growth"},
		Lifestyle:         []string{"cultural_enthusiast", "social_butterfly", "entrepreneur"},
	})
	require.NoError(t, err)

	// Contributions are capped per dimension and the totals are clamped.
	assert.LessOrEqual(t, record.CulturalDepthScore, 100.0)
	assert.LessOrEqual(t, record.CommunityEngagementScore, 100.0)
	// 40 + 20 (origins capped) + 25 (celebrations capped) + 10.
	assert.Equal(t, 95.0, record.CulturalDepthScore)
	// 30 + 25 (goals capped) + 45 for engaged lifestyles, clamped to 100.
	assert.Equal(t, 100.0, record.CommunityEngagementScore)
}

func TestSubmitNormalizesTags(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)

	record, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:             []string{"  Brazilian ", "brazilian", "", "PORTUGUESE"},
		LanguagePreference: " Bilingual ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"brazilian", "portuguese"}, record.Origins)
	assert.Equal(t, domain.LanguageBilingual, record.LanguagePreference)
}

func TestSubmitParsesValueRatings(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)

	record, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:             []string{"brazilian"},
		LanguagePreference: "bilingual",
		CulturalValues: []string{
			"family:9",
			"Tradition: 7 ",
			"community:25", // clamped to 10
			"faith:-3",     // clamped to 0
			"no-separator", // dropped
			"music:abc",    // dropped
			":5",           // dropped, empty key
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RatingMap{
		"family":    9,
		"tradition": 7,
		"community": 10,
		"faith":     0,
	}, record.CulturalValues)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	uc, _, queue := newTestQuizUseCase(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   *SubmitQuizRequest
		field string
	}{
		{
			name:  "no origins after normalization",
			req:   &SubmitQuizRequest{Origin: []string{"  ", ""}, LanguagePreference: "bilingual"},
			field: "origin",
		},
		{
			name:  "unknown language preference",
			req:   &SubmitQuizRequest{Origin: []string{"brazilian"}, LanguagePreference: "spanish_first"},
			field: "language_preference",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Submit(ctx, "user-1", tt.req)
			require.Error(t, err)
			ve, ok := domain.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}

	// Rejected submissions never trigger recomputation.
	assert.Zero(t, queue.Len())
}

func TestSubmitEnqueuesRecompute(t *testing.T) {
	uc, _, queue := newTestQuizUseCase(t)

	_, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:             []string{"brazilian"},
		LanguagePreference: "bilingual",
	})
	require.NoError(t, err)
	require.Equal(t, 1, queue.Len())

	userID, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSubmitRetriesTransientStoreFailure(t *testing.T) {
	uc, prefs, _ := newTestQuizUseCase(t)
	prefs.FailNext(2, domain.ErrStoreUnavailable)

	record, err := uc.Submit(context.Background(), "user-1", &SubmitQuizRequest{
		Origin:             []string{"brazilian"},
		LanguagePreference: "bilingual",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)

	stored, err := prefs.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, record.Origins, stored.Origins)
}

func TestResubmitPreservesCompletedAt(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)
	ctx := context.Background()

	first, err := uc.Submit(ctx, "user-1", &SubmitQuizRequest{
		Origin:             []string{"brazilian"},
		LanguagePreference: "bilingual",
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	second, err := uc.Submit(ctx, "user-1", &SubmitQuizRequest{
		Origin:             []string{"portuguese"},
		LanguagePreference: "portuguese_first",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
	assert.True(t, second.LastUpdated.After(first.LastUpdated))

	stored, err := uc.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"portuguese"}, stored.Origins)
}

func TestGetPreferencesNotFound(t *testing.T) {
	uc, _, _ := newTestQuizUseCase(t)
	_, err := uc.GetPreferences(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrPreferencesNotFound)
}

func TestDeletePreferencesCascadesEdges(t *testing.T) {
	prefs := memory.NewPreferenceRepository()
	edges := memory.NewCompatibilityRepository()
	prefs.CascadeTo(edges)
	uc := NewQuizUseCase(prefs, memory.NewRecomputeQueue(16), zap.NewNop())
	ctx := context.Background()

	_, err := uc.Submit(ctx, "user-1", &SubmitQuizRequest{
		Origin: []string{"brazilian"}, LanguagePreference: "bilingual",
	})
	require.NoError(t, err)

	require.NoError(t, edges.Upsert(ctx, &domain.CompatibilityEdge{
		UserAID: "user-1", UserBID: "user-2", OverallCompatibility: 80,
	}))

	require.NoError(t, uc.DeletePreferences(ctx, "user-1"))

	_, err = uc.GetPreferences(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrPreferencesNotFound)
	_, err = edges.GetByUsers(ctx, "user-1", "user-2")
	assert.ErrorIs(t, err, domain.ErrEdgeNotFound)

	// Deleting again reports the record as gone.
	assert.ErrorIs(t, uc.DeletePreferences(ctx, "user-1"), domain.ErrPreferencesNotFound)
}
