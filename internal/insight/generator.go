// Package insight asks a language model for a short private-equity style
// assessment of a business.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/internal/model"
	"github.com/daniellim27/leadgen-scraper/internal/resilience"
	"github.com/daniellim27/leadgen-scraper/pkg/anthropic"
)

const (
	systemPrompt = "You are a private equity analyst providing investment insights in JSON format only."

	userPromptTemplate = `You are a private equity analyst tasked with providing an initial assessment of a potential investment target.
Based on the available information, provide a brief analysis of this business from a private equity perspective:

Business Name: %s
Website: %s
Address: %s
Rating: %s

Please include the following in your analysis:
1. Potential for growth and scalability
2. Market position assessment
3. Possible value creation strategies
4. Initial risk factors
5. Recommended next steps for due diligence

Format your response as JSON with the following structure:
{
    "summary": "Brief 2-3 sentence summary of investment potential",
    "growth_potential": "Assessment of growth potential",
    "market_position": "Assessment of market position",
    "value_creation": "Potential value creation strategies",
    "risk_factors": "Key risk factors to consider",
    "next_steps": "Recommended next steps for further analysis"
}`

	notAvailable        = "Not available"
	unstructuredSummary = "Unable to generate structured insights."
)

// BusinessInput is the subset of a business record used in the prompt.
// Rating is kept raw because callers send numbers, "N/A" or nothing.
type BusinessInput struct {
	Name    string          `json:"name"`
	Website string          `json:"website"`
	Address string          `json:"address"`
	Rating  json.RawMessage `json:"rating,omitempty"`
}

// InputFromDetail builds a BusinessInput from a resolved business.
func InputFromDetail(d model.BusinessDetail) BusinessInput {
	in := BusinessInput{Name: d.Name, Website: d.Website, Address: d.Address}
	if raw, err := json.Marshal(d.Rating); err == nil {
		in.Rating = raw
	}
	return in
}

// RatingText renders the rating for the prompt. Missing, empty and zero
// ratings read as "Not available".
func (b BusinessInput) RatingText() string {
	if len(b.Rating) == 0 {
		return notAvailable
	}
	var v any
	if err := json.Unmarshal(b.Rating, &v); err != nil {
		return notAvailable
	}
	switch r := v.(type) {
	case string:
		if r == "" {
			return notAvailable
		}
		return r
	case float64:
		if r == 0 {
			return notAvailable
		}
		return strconv.FormatFloat(r, 'f', -1, 64)
	case bool:
		if !r {
			return notAvailable
		}
		return "true"
	case nil:
		return notAvailable
	default:
		return string(b.Rating)
	}
}

// Prompt returns the user prompt for b.
func (b BusinessInput) Prompt() string {
	return fmt.Sprintf(userPromptTemplate, b.Name, b.Website, b.Address, b.RatingText())
}

// Generator produces Insights through an Anthropic model.
type Generator struct {
	cfg    *config.Config
	client anthropic.Client
}

// NewGenerator creates a Generator.
func NewGenerator(cfg *config.Config, client anthropic.Client) *Generator {
	return &Generator{cfg: cfg, client: client}
}

// Generate returns insights for in. Only a missing API key is an error;
// model or parse failures come back as the fallback structure.
func (g *Generator) Generate(ctx context.Context, in BusinessInput) (model.Insights, error) {
	if g.cfg.Anthropic.Key == "" {
		return model.Insights{}, resilience.NewConfigError("Anthropic API key is not configured")
	}

	log := zap.L().With(zap.String("business", in.Name), zap.String("model", g.cfg.Anthropic.Model))
	log.Info("insight: generating")

	temp := g.cfg.Anthropic.Temperature
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.cfg.Anthropic.Model,
		MaxTokens:   g.cfg.Anthropic.MaxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: in.Prompt()}},
		Temperature: &temp,
	})
	if err != nil {
		log.Error("insight: model call failed", zap.String("kind", resilience.Kind(err)), zap.Error(err))
		return model.FallbackInsights("Error generating insights: " + err.Error()), nil
	}
	resp.Usage.LogCost(g.cfg.Anthropic.Model, "insight")

	insights, err := Parse(resp.Text())
	if err != nil {
		log.Warn("insight: unparseable response", zap.Error(err))
		return model.FallbackInsights("Error generating insights: " + err.Error()), nil
	}
	return insights, nil
}

// Parse extracts Insights from model output. The whole text is tried as
// JSON first, then the span from the first '{' to the last '}'. Text with
// no object at all yields the fallback structure; an object that does not
// decode is an error. Non-string values are flattened and missing keys read
// as "Analysis not available.".
func Parse(text string) (model.Insights, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil || fields == nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return model.FallbackInsights(unstructuredSummary), nil
		}
		fields = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
			return model.Insights{}, eris.Wrap(err, "insight: decode response")
		}
	}

	fallback := model.FallbackInsights(unstructuredSummary)
	return model.Insights{
		Summary:         field(fields, "summary", fallback.Summary),
		GrowthPotential: field(fields, "growth_potential", fallback.GrowthPotential),
		MarketPosition:  field(fields, "market_position", fallback.MarketPosition),
		ValueCreation:   field(fields, "value_creation", fallback.ValueCreation),
		RiskFactors:     field(fields, "risk_factors", fallback.RiskFactors),
		NextSteps:       field(fields, "next_steps", fallback.NextSteps),
	}, nil
}

func field(fields map[string]any, key, def string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return def
		}
		return string(b)
	}
}
