package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"shoppa/internal/health"
	"shoppa/internal/misc"
	"shoppa/internal/model"
)

const DefaultModel = "gemini-2.5-flash"

const identifyPrompt = "Identify this Australian packaged food product. Return ONLY the brand and product name " +
	"(e.g. 'Arnott's Vita-Weat Crackers'). Do not include punctuation or extra words like 'The product is'. " +
	"If you are unsure, just describe the food item (e.g. 'Canned Tuna')."

const draftPrompt = `Create a realistic product entry for an Australian packaged food item matching the search query: %q.
Estimate typical nutritional values per 100g/ml for this type of product.
Use real Australian brands if the query implies one (e.g. 'Cadbury', 'Smiths', 'John West'), otherwise use a generic but realistic brand.`

const explainPrompt = `You are a helpful Australian nutritionist assistant for the ShopPA app.
Explain why the product "%s %s" has a health rating of %.1f stars (%s).

Nutritional Data (per 100g/ml):
- Sugar: %gg
- Saturated Fat: %gg
- Sodium: %gmg
- Protein: %gg
- Fiber: %gg
%s
Keep the explanation short (under 60 words), friendly, and practical for a shopper standing in an aisle.
Mention specifically what nutrients dragged the score down or boosted it.`

// generator is the part of *genai.GenerativeModel the enricher uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// Gemini is the Vertex AI backed Enricher.
type Gemini struct {
	Logger logger

	client     *genai.Client
	text       generator
	structured generator

	mu   sync.Mutex
	rand *rand.Rand
}

func NewGemini(ctx context.Context, cfg GeminiConfig, l logger) (*Gemini, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating vertex ai client, project: %s, location: %s", cfg.ProjectID, cfg.Location)
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}

	structured := c.GenerativeModel(name)
	structured.ResponseMIMEType = "application/json"
	structured.ResponseSchema = draftSchema()

	g := newGemini(c.GenerativeModel(name), structured, l)
	g.client = c
	return g, nil
}

func newGemini(text, structured generator, l logger) *Gemini {
	return &Gemini{
		Logger:     l,
		text:       text,
		structured: structured,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func draftSchema() *genai.Schema {
	categories := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		categories = append(categories, string(c))
	}
	num := func() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"brand":       str(),
			"name":        str(),
			"size":        str(),
			"description": str(),
			"category":    {Type: genai.TypeString, Enum: categories},
			"nutrition": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"energy_kj":       num(),
					"sugar_g":         num(),
					"saturated_fat_g": num(),
					"sodium_mg":       num(),
					"protein_g":       num(),
					"fiber_g":         num(),
				},
			},
		},
		Required: []string{"brand", "name", "size", "category", "nutrition", "description"},
	}
}

func (g *Gemini) IdentifyFromImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	resp, err := g.text.GenerateContent(ctx, genai.Blob{MIMEType: mimeType, Data: image}, genai.Text(identifyPrompt))
	if err != nil {
		g.Logger.Errorf("IdentifyFromImage: Error generating content, mime: %s, err: %v", mimeType, err)
		return "", errors.Wrapf(model.ErrUnavailable, "identify image: %v", err)
	}
	name, err := responseText(resp)
	if err != nil {
		return "", errors.Wrapf(model.ErrUnavailable, "identify image: %v", err)
	}
	g.Logger.Debugf("IdentifyFromImage: Identified product, name: %s", name)
	return name, nil
}

type draft struct {
	Brand       string               `json:"brand"`
	Name        string               `json:"name"`
	Size        string               `json:"size"`
	Description string               `json:"description"`
	Category    model.Category       `json:"category"`
	Nutrition   model.NutritionFacts `json:"nutrition"`
}

func (g *Gemini) GenerateFromQuery(ctx context.Context, query string) (model.Product, error) {
	resp, err := g.structured.GenerateContent(ctx, genai.Text(fmt.Sprintf(draftPrompt, query)))
	if err != nil {
		g.Logger.Errorf("GenerateFromQuery: Error generating content, query: %s, err: %v", query, err)
		return model.Product{}, errors.Wrapf(model.ErrUnavailable, "generate product: %v", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return model.Product{}, errors.Wrapf(model.ErrUnavailable, "generate product: %v", err)
	}

	var d draft
	if err = json.Unmarshal([]byte(stripFence(text)), &d); err != nil {
		g.Logger.Warnf("GenerateFromQuery: Error decoding draft, body: %s, err: %v", misc.StringLimit(text, 300), err)
		return model.Product{}, errors.Wrapf(model.ErrUnavailable, "decode draft: %v", err)
	}
	if strings.TrimSpace(d.Name) == "" {
		return model.Product{}, errors.Wrapf(model.ErrUnavailable, "draft for query %q has no name", query)
	}
	if !d.Category.Valid() {
		return model.Product{}, errors.Wrapf(model.ErrUnavailable, "draft has unknown category %q", d.Category)
	}
	if d.Size == "" {
		d.Size = "Standard"
	}

	g.mu.Lock()
	prices := MockPrices(g.rand)
	g.mu.Unlock()

	return model.Product{
		ID:          model.GeneratedPrefix + uuid.NewString(),
		Name:        d.Name,
		Brand:       d.Brand,
		Size:        d.Size,
		Category:    d.Category,
		Image:       PlaceholderImage(d.Name),
		Description: d.Description,
		Nutrition:   d.Nutrition,
		Prices:      prices,
	}, nil
}

func (g *Gemini) ExplainScore(ctx context.Context, p model.ScoredProduct) (string, error) {
	var moved strings.Builder
	if adjs := health.Breakdown(p.Nutrition); len(adjs) > 0 {
		moved.WriteString("\nScore adjustments from a 3.0 baseline:\n")
		for _, a := range adjs {
			fmt.Fprintf(&moved, "- %s: %+.1f\n", a.Nutrient, a.Delta)
		}
	}
	n := p.Nutrition
	prompt := fmt.Sprintf(explainPrompt, p.Brand, p.Name, p.Score, p.Label,
		n.SugarG, n.SaturatedFatG, n.SodiumMg, n.ProteinG, n.FiberG, moved.String())

	resp, err := g.text.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.Logger.Errorf("ExplainScore: Error generating content, product: %s, err: %v", p.ID, err)
		return MsgExplainFailed, errors.Wrapf(model.ErrUnavailable, "explain score: %v", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return MsgNoExplanation, nil
	}
	return text, nil
}

// PlaceholderImage is the image used for generated products.
func PlaceholderImage(name string) string {
	return "https://placehold.co/300x300?text=" + url.QueryEscape(name)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("empty text in response")
	}
	return text, nil
}

// stripFence removes a ```json fence the model sometimes adds despite the
// JSON response type.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
