// Package edamam implements outbound.RecipeSearchGateway against the
// Edamam Recipe Search API v2
package edamam

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/recipewiz/backend/pkg/errors"
)

const (
	serviceName = "edamam"
	searchPath  = "/api/recipes/v2"

	// placeholder Edamam uses when an ingredient has no measure
	noUnit = "<unit>"
)

// Client implements the RecipeSearchGateway interface using Edamam
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	maxResults int
	client     *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ outbound.RecipeSearchGateway = (*Client)(nil)

// NewClient creates a new Edamam client. Requests are traced and limited
// to cfg.RequestsPerMinute.
func NewClient(cfg config.SearchConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		maxResults: cfg.MaxResults,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("edamam"),
	}
}

// Response structures

type searchResponse struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Count int   `json:"count"`
	Hits  []hit `json:"hits"`
}

type hit struct {
	Recipe hitRecipe `json:"recipe"`
}

type hitRecipe struct {
	URI             string              `json:"uri"`
	Label           string              `json:"label"`
	Source          string              `json:"source"`
	URL             string              `json:"url"`
	Yield           float64             `json:"yield"`
	IngredientLines []string            `json:"ingredientLines"`
	Ingredients     []hitIngredient     `json:"ingredients"`
	CuisineType     []string            `json:"cuisineType"`
	TotalNutrients  map[string]nutrient `json:"totalNutrients"`
}

type hitIngredient struct {
	Text     string  `json:"text"`
	Quantity float64 `json:"quantity"`
	Measure  string  `json:"measure"`
	Food     string  `json:"food"`
}

type nutrient struct {
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Search queries Edamam and maps every usable hit to a recipe
func (c *Client) Search(ctx context.Context, criteria outbound.SearchCriteria) ([]recipe.Recipe, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewTooManyRequestsError().WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(criteria), nil)
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Search request rejected",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.NewTooManyRequestsError()
		}
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("API error %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewExternalServiceError(serviceName, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	recipes := make([]recipe.Recipe, 0, len(parsed.Hits))
	for _, h := range parsed.Hits {
		if c.maxResults > 0 && len(recipes) >= c.maxResults {
			break
		}
		r, err := toRecipe(h.Recipe)
		if err != nil {
			c.logger.Debug("Skipping unusable hit", zap.String("uri", h.Recipe.URI), zap.Error(err))
			continue
		}
		recipes = append(recipes, r)
	}

	c.logger.Info("Search completed",
		zap.String("query", criteria.Query),
		zap.Int("hits", len(parsed.Hits)),
		zap.Int("recipes", len(recipes)),
		zap.Duration("duration", time.Since(start)),
	)

	return recipes, nil
}

func (c *Client) searchURL(criteria outbound.SearchCriteria) string {
	q := url.Values{}
	q.Set("type", "public")
	q.Set("q", criteria.Query)
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	for _, d := range criteria.DietLabels {
		q.Add("diet", strings.ToLower(d))
	}
	for _, h := range criteria.HealthLabels {
		q.Add("health", strings.ToLower(h))
	}
	for _, cuisine := range criteria.CuisineTypes {
		q.Add("cuisineType", cuisine)
	}
	return c.baseURL + searchPath + "?" + q.Encode()
}

func toRecipe(h hitRecipe) (recipe.Recipe, error) {
	ingredients := make([]recipe.Ingredient, 0, len(h.Ingredients))
	for i, ing := range h.Ingredients {
		name := strings.TrimSpace(ing.Food)
		if name == "" {
			name = strings.TrimSpace(ing.Text)
		}
		quantity := ing.Quantity
		if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
			quantity = 0
		}
		unit := ing.Measure
		if unit == noUnit {
			unit = ""
		}
		ingredients = append(ingredients, recipe.Ingredient{
			ID:       int64(i + 1),
			Name:     name,
			Quantity: quantity,
			Unit:     unit,
		})
	}

	servings := int(math.Round(h.Yield))
	if servings < 1 {
		servings = 1
	}

	return recipe.New(recipe.Attributes{
		ID:              RecipeID(h.URI),
		Title:           h.Label,
		Description:     strings.Join(h.CuisineType, ", "),
		Instructions:    h.URL,
		Servings:        servings,
		Ingredients:     ingredients,
		IngredientLines: h.IngredientLines,
		Nutrition:       toNutrition(h.TotalNutrients),
	})
}

func toNutrition(n map[string]nutrient) *recipe.Nutrition {
	if len(n) == 0 {
		return nil
	}
	return recipe.NewNutrition(
		n["ENERC_KCAL"].Quantity,
		n["PROCNT"].Quantity,
		n["FAT"].Quantity,
		n["CHOCDF"].Quantity,
		n["FIBTG"].Quantity,
		n["SUGAR"].Quantity,
	)
}

// RecipeID derives a stable positive id from an Edamam recipe URI. The
// id fits in 32 bits so browsers can round-trip it as a JSON number.
func RecipeID(uri string) int64 {
	h := fnv.New32a()
	h.Write([]byte(uri))
	id := int64(h.Sum32())
	if id == 0 {
		return 1
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
