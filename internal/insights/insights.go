// Package insights produces short prevention guidance for the dashboard:
// canned seasonal messages by default, optionally rewritten by OpenAI when an
// API key is configured.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Seasonal returns canned guidance for the given date. Always succeeds, so
// the endpoint never depends on an upstream API.
func Seasonal(now time.Time) []string {
	month := int(now.Month())

	var insights []string
	switch {
	case month >= 5 && month <= 10:
		insights = []string{
			"Rainy season is peak dengue transmission period. Remove standing water from containers, gutters and plant saucers weekly.",
			"Mosquito activity is highest at dawn and dusk. Use repellent and long sleeves during these hours.",
			"Report clusters of fever cases in your barangay to the health office immediately.",
		}
	case month >= 3 && month <= 4:
		insights = []string{
			"Summer heat shortens the mosquito breeding cycle. Check water storage drums and keep them tightly covered.",
			"Water shortages lead to more household water storage. Covered containers prevent mosquito breeding.",
			"Early season vigilance prevents outbreaks when the rains arrive.",
		}
	default:
		insights = []string{
			"Cooler months still sustain dengue transmission in this region. Continue weekly search-and-destroy of breeding sites.",
			"Watch for fever with rash, joint pain or bleeding gums and seek care early.",
			"Community clean-up drives are most effective when held every week.",
		}
	}

	extras := []string{
		"The 4 o'clock habit works: inspect your surroundings for stagnant water every afternoon.",
		"Dengue mosquitoes breed in clean, stagnant water. Even a bottle cap of water can host larvae.",
		"Early consultation reduces severe dengue. Do not wait for warning signs to worsen.",
	}
	insights = append(insights, extras[now.YearDay()%len(extras)])
	return insights
}

// Generator rewrites the seasonal guidance with an LLM for variety. It is
// optional; callers fall back to Seasonal on any failure.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator reads OPENAI_API_KEY for authentication and errors when it is
// not set, so startup can log once and continue without LLM insights.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Generate asks the model for localized prevention tips seeded with the
// canned guidance. Returns Seasonal output on any API failure.
func (g *Generator) Generate(ctx context.Context, now time.Time, riskLevel string) []string {
	seed := Seasonal(now)

	prompt := fmt.Sprintf(
		"You are a barangay health worker in the Philippines. Current dengue risk level: %s. "+
			"Rewrite these prevention tips in plain language, one per line, no numbering:\n%s",
		riskLevel, strings.Join(seed, "\n"))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		log.Printf("insights: generation failed, using seasonal set: %v", err)
		return seed
	}
	if len(resp.Choices) == 0 {
		return seed
	}

	var out []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-•* "))
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return seed
	}
	return out
}
