package client

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shoppa/internal/health"
	applog "shoppa/internal/logger"
	"shoppa/internal/model"
)

type fakeGenerator struct {
	text  string
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.text)}},
		}},
	}, nil
}

func newTestGemini(text, structured *fakeGenerator) *Gemini {
	g := newGemini(text, structured, applog.Discard())
	g.rand = rand.New(rand.NewSource(1))
	return g
}

const draftJSON = "```json\n" + `{
  "brand": "Smiths",
  "name": "Salt & Vinegar Chips",
  "size": "170g",
  "description": "Crinkle cut chips.",
  "category": "Snacks & Chips",
  "nutrition": {"energy_kj": 2100, "sugar_g": 0.9, "saturated_fat_g": 3.1, "sodium_mg": 820, "protein_g": 6.2, "fiber_g": 3.5}
}` + "\n```"

func TestGenerateFromQuery(t *testing.T) {
	structured := &fakeGenerator{text: draftJSON}
	g := newTestGemini(&fakeGenerator{}, structured)

	p, err := g.GenerateFromQuery(context.Background(), "salt vinegar chips")
	if err != nil {
		t.Fatalf("GenerateFromQuery: %v", err)
	}
	if !p.IsGenerated() {
		t.Errorf("id %q lacks the generated prefix", p.ID)
	}
	if p.Name != "Salt & Vinegar Chips" || p.Category != model.CategorySnacks {
		t.Errorf("unexpected draft: %+v", p)
	}
	if p.Nutrition.SodiumMg != 820 {
		t.Errorf("sodium = %v, want 820", p.Nutrition.SodiumMg)
	}
	if p.Image != PlaceholderImage("Salt & Vinegar Chips") {
		t.Errorf("image = %s", p.Image)
	}
	if len(p.Prices) != 3 {
		t.Fatalf("got %d prices, want 3", len(p.Prices))
	}
	if text, ok := structured.parts[0].(genai.Text); !ok || !strings.Contains(string(text), `"salt vinegar chips"`) {
		t.Errorf("prompt does not carry the query: %v", structured.parts)
	}
}

func TestGenerateFromQueryFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"call error", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"not json", &fakeGenerator{text: "I cannot help with that"}},
		{"no name", &fakeGenerator{text: `{"brand":"X","category":"Juices"}`}},
		{"bad category", &fakeGenerator{text: `{"name":"Lego","category":"Toys"}`}},
		{"empty", &fakeGenerator{text: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(&fakeGenerator{}, tt.gen)
			_, err := g.GenerateFromQuery(context.Background(), "q")
			if !errors.Is(err, model.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestIdentifyFromImage(t *testing.T) {
	text := &fakeGenerator{text: "  Arnott's Tim Tam Original\n"}
	g := newTestGemini(text, &fakeGenerator{})

	name, err := g.IdentifyFromImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	if err != nil {
		t.Fatalf("IdentifyFromImage: %v", err)
	}
	if name != "Arnott's Tim Tam Original" {
		t.Errorf("name = %q", name)
	}
	blob, ok := text.parts[0].(genai.Blob)
	if !ok || blob.MIMEType != "image/jpeg" || len(blob.Data) != 2 {
		t.Errorf("first part = %#v, want the image blob", text.parts[0])
	}

	text.err = errors.New("boom")
	if _, err = g.IdentifyFromImage(context.Background(), nil, "image/png"); !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestExplainScore(t *testing.T) {
	text := &fakeGenerator{text: "High sugar drags this one down."}
	g := newTestGemini(text, &fakeGenerator{})
	p := health.Annotate(model.Product{
		ID: "sd_1", Brand: "Coca-Cola", Name: "Classic",
		Nutrition: model.NutritionFacts{SugarG: 10.6, SodiumMg: 10},
	})

	msg, err := g.ExplainScore(context.Background(), p)
	if err != nil || msg != "High sugar drags this one down." {
		t.Fatalf("ExplainScore = %q, %v", msg, err)
	}
	prompt := string(text.parts[0].(genai.Text))
	for _, want := range []string{`"Coca-Cola Classic"`, "2.5 stars", "Sugar: 10.6g", "- sugar: -0.5"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	text.err = errors.New("timeout")
	msg, err = g.ExplainScore(context.Background(), p)
	if msg != MsgExplainFailed || !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("failed ExplainScore = %q, %v", msg, err)
	}
}

func TestUnavailable(t *testing.T) {
	var e Enricher = Unavailable{}
	ctx := context.Background()
	if _, err := e.IdentifyFromImage(ctx, nil, ""); !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("IdentifyFromImage err = %v", err)
	}
	if _, err := e.GenerateFromQuery(ctx, "milk"); !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("GenerateFromQuery err = %v", err)
	}
	msg, err := e.ExplainScore(ctx, model.ScoredProduct{})
	if msg != MsgNoCredentials || !errors.Is(err, model.ErrUnavailable) {
		t.Errorf("ExplainScore = %q, %v", msg, err)
	}
}

func TestMockPrices(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		prices := MockPrices(r)
		if len(prices) != 3 {
			t.Fatalf("got %d prices", len(prices))
		}
		seen := map[model.Retailer]bool{}
		for _, pp := range prices {
			if seen[pp.Retailer] {
				t.Fatalf("duplicate retailer %s", pp.Retailer)
			}
			seen[pp.Retailer] = true
			if pp.Price.LessThan(minMockPrice) || pp.Price.GreaterThan(decimal.NewFromFloat(7.5)) {
				t.Errorf("price %s out of range", pp.Price)
			}
			if pp.StoreDistanceKm < 0 || pp.StoreDistanceKm > 5 {
				t.Errorf("distance %v out of range", pp.StoreDistanceKm)
			}
			if !strings.HasSuffix(pp.UnitPrice, "/100g") || pp.LastUpdated != "Just now" {
				t.Errorf("unexpected labels: %+v", pp)
			}
		}
		if seen[model.RetailerFoodland] || seen[model.RetailerDrakes] {
			t.Error("mock prices used a minor retailer")
		}
	}
}
