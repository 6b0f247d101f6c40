package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// GenerateCompatibilityInsights writes short, display-only insight lines
// for a scored pair. Falls back to templated insights when the API is
// unavailable so scoring never depends on it.
func (c *GeminiClient) GenerateCompatibilityInsights(
	ctx context.Context,
	a, b *domain.PreferenceRecord,
	edge *domain.CompatibilityEdge,
) ([]string, error) {
	prompt := fmt.Sprintf(`
		Two members of a Portuguese-speaking community platform matched with
		an overall cultural compatibility of %.0f/100.
		Shared elements: %v
		Member 1 origins: %v, language preference: %s
		Member 2 origins: %v, language preference: %s

		Task: Write 2-3 short, warm insight lines (max 15 words each) about
		what culturally connects them. Do not mention scores or numbers.
		Language: English.
		Output: JSON array of strings. Example: ["You both...", "Your..."]
	`,
		edge.OverallCompatibility, edge.SharedElements,
		a.Origins, a.LanguagePreference,
		b.Origins, b.LanguagePreference,
	)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return c.fallbackInsights(edge), nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return c.fallbackInsights(edge), nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	responseText := strings.TrimSpace(sb.String())
	// Clean up markdown code blocks if present
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")

	var insights []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(responseText)), &insights); err != nil {
		// Fallback if JSON parsing fails - take non-empty lines instead
		for _, line := range strings.Split(responseText, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "[") && !strings.HasSuffix(line, "]") {
				insights = append(insights, line)
			}
		}
		if len(insights) == 0 {
			return nil, fmt.Errorf("failed to parse insights: %w", err)
		}
	}

	return insights, nil
}

func (c *GeminiClient) fallbackInsights(edge *domain.CompatibilityEdge) []string {
	insights := make([]string, 0, 2)
	if len(edge.SharedElements) > 0 {
		insights = append(insights,
			fmt.Sprintf("You both share %s, a natural starting point.", edge.SharedElements[0]))
	}
	if edge.OverallCompatibility >= 80 {
		insights = append(insights, "Your cultural backgrounds align remarkably well.")
	} else {
		insights = append(insights, "Your different traditions could make for great conversations.")
	}
	return insights
}
