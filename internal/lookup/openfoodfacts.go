// Package lookup searches the Open Food Facts database for products that
// can be imported into the catalog.
package lookup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/service/cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public Open Food Facts instance.
	DefaultBaseURL = "https://world.openfoodfacts.org"

	searchPath          = "/cgi/search.pl"
	maxResponseBytes    = 8 << 20
	kilojoulesPerKcal   = 4.184
	importedProductName = "Imported product"
)

// ErrUpstream is returned when Open Food Facts answers with a non-200 status
// or a body that cannot be parsed.
var ErrUpstream = errors.New("food database unavailable")

// Config holds client settings.
type Config struct {
	BaseURL   string
	PageSize  int
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns settings matching the public API etiquette.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		PageSize:  8,
		Timeout:   10 * time.Second,
		UserAgent: "macro-service/1.0",
	}
}

// Candidate is one search hit mapped onto a product preview. Product.ID
// is empty; importing assigns a fresh id.
type Candidate struct {
	Code    string        `json:"code"`
	Brand   string        `json:"brand,omitempty"`
	Product model.Product `json:"product"`
}

// Searcher finds import candidates by free text.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithCache memoizes results per normalized query.
func WithCache(store cache.Cache[string, []Candidate]) Option {
	return func(c *Client) {
		c.cache = store
	}
}

// Client is an Open Food Facts search client guarded by a circuit breaker.
// Identical concurrent queries share one upstream call.
type Client struct {
	cfg   Config
	http  *http.Client
	cb    *circuitbreaker.CircuitBreaker
	cache cache.Cache[string, []Candidate]
	group singleflight.Group
}

// New creates a client.
func New(cfg Config, cb *circuitbreaker.CircuitBreaker, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb:   cb,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to PageSize candidates. A blank query yields no
// candidates and no error.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return []Candidate{}, nil
	}

	start := time.Now()
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			metrics.RecordLookup(time.Since(start), "cache_hit")
			return hit, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return circuitbreaker.Do(ctx, c.cb, func(ctx context.Context) ([]Candidate, error) {
			return c.fetch(ctx, key)
		})
	})
	if err != nil {
		result := "error"
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			result = "circuit_open"
		}
		metrics.RecordLookup(time.Since(start), result)
		log.Warn().Err(err).Str("query", key).Msg("Food database lookup failed")
		return nil, err
	}

	candidates := v.([]Candidate)
	if c.cache != nil {
		c.cache.Set(key, candidates)
	}
	metrics.RecordLookup(time.Since(start), "success")
	return candidates, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]Candidate, error) {
	reqURL, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + searchPath)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	params := reqURL.Query()
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.cfg.PageSize))
	reqURL.RawQuery = params.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out := make([]Candidate, 0, len(sr.Products))
	for _, p := range sr.Products {
		out = append(out, p.candidate())
	}
	return out, nil
}

type searchResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	Brands      string     `json:"brands"`
	Nutriments  nutriments `json:"nutriments"`
}

type nutriments struct {
	EnergyKcal *number `json:"energy-kcal_100g"`
	Energy     *number `json:"energy_100g"`
	Proteins   *number `json:"proteins_100g"`
	Carbs      *number `json:"carbohydrates_100g"`
	Fat        *number `json:"fat_100g"`
}

func (p offProduct) candidate() Candidate {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = importedProductName
	}
	n := p.Nutriments

	kcal := n.EnergyKcal.value()
	if n.EnergyKcal == nil && n.Energy.value() > 0 {
		kcal = math.Round(n.Energy.value() / kilojoulesPerKcal)
	}

	return Candidate{
		Code:  p.Code,
		Brand: p.Brands,
		Product: model.Product{
			Name:         name,
			ServingGrams: 100,
			Unit:         model.UnitLabelGrams,
			GramsPerUnit: 1,
			Calories:     kcal,
			Protein:      n.Proteins.value(),
			Carbs:        n.Carbs.value(),
			Fat:          n.Fat.value(),
		},
	}
}

// number accepts JSON numbers and numeric strings; the database emits both.
// Unparseable and non-finite values decode as 0.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || !model.IsFinite(f) {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

func (n *number) value() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}
