package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultIAMURL is the token service used to exchange an API key for a bearer token.
	DefaultIAMURL = "https://iam.cloud.ibm.com"

	// DefaultAPIVersion is the version query parameter sent with every prediction.
	DefaultAPIVersion = "2021-05-01"

	// DefaultTimeout bounds a whole scoring round trip when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxConcurrency caps in-flight scoring requests when Config.MaxConcurrency is zero.
	DefaultMaxConcurrency = 8

	// tokenRefreshSkew renews the bearer token this long before it expires.
	tokenRefreshSkew = 60 * time.Second

	maxErrorBody = 512
)

// ErrNotConfigured is returned by NewWMLClient when credentials are missing.
// It is a permanent condition: callers should log it once and run without a scorer.
var ErrNotConfigured = errors.New("scoring client not configured")

// Scorer predicts the energy of one inference from its feature row.
type Scorer interface {
	// Score returns the predicted energy in kWh.
	Score(ctx context.Context, v FeatureVector) (float64, error)
}

// Config holds the credentials and transport settings of the scoring deployment.
type Config struct {
	URL            string        `yaml:"url"`
	APIKey         string        `yaml:"api_key"`
	SpaceID        string        `yaml:"space_id"`
	DeploymentID   string        `yaml:"deployment_id"`
	IAMURL         string        `yaml:"iam_url"`
	Version        string        `yaml:"version"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int64         `yaml:"max_concurrency"`
}

// WMLClient scores feature rows against a Watson Machine Learning online deployment.
type WMLClient struct {
	cfg        Config
	httpClient *http.Client
	sem        *semaphore.Weighted
	logger     zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewWMLClient validates cfg and returns a client ready to score.
// It returns ErrNotConfigured when the URL, API key or space ID is missing.
// A missing deployment ID is not checked here; it fails each Score call instead.
func NewWMLClient(cfg Config, logger zerolog.Logger) (*WMLClient, error) {
	var missing []string
	if cfg.URL == "" {
		missing = append(missing, "url")
	}
	if cfg.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if cfg.SpaceID == "" {
		missing = append(missing, "space_id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}

	if cfg.IAMURL == "" {
		cfg.IAMURL = DefaultIAMURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	cfg.IAMURL = strings.TrimRight(cfg.IAMURL, "/")

	return &WMLClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: int(cfg.MaxConcurrency),
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sem:    semaphore.NewWeighted(cfg.MaxConcurrency),
		logger: logger.With().Str("component", "scoring").Logger(),
		now:    time.Now,
	}, nil
}

type inputData struct {
	Fields []string `json:"fields"`
	Values [][]any  `json:"values"`
}

type scoringRequest struct {
	InputData []inputData `json:"input_data"`
}

type scoringResponse struct {
	Predictions []struct {
		Fields []string `json:"fields"`
		Values [][]any  `json:"values"`
	} `json:"predictions"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Score submits v as a single input row and returns predictions[0].values[0][0].
// It makes exactly one attempt.
func (c *WMLClient) Score(ctx context.Context, v FeatureVector) (float64, error) {
	if c.cfg.DeploymentID == "" {
		return 0, errors.New("deployment id is not set")
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, fmt.Errorf("waiting for scoring slot: %w", err)
	}
	defer c.sem.Release(1)

	token, err := c.bearerToken(ctx)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(scoringRequest{
		InputData: []inputData{{Fields: Columns(), Values: [][]any{v.Values()}}},
	})
	if err != nil {
		return 0, fmt.Errorf("encoding scoring request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ml/v4/deployments/%s/predictions?version=%s",
		c.cfg.URL, url.PathEscape(c.cfg.DeploymentID), url.QueryEscape(c.cfg.Version))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var out scoringResponse
	if err := c.do(req, &out); err != nil {
		return 0, fmt.Errorf("scoring deployment %s: %w", c.cfg.DeploymentID, err)
	}

	return firstValue(out)
}

// bearerToken returns a cached IAM token, exchanging the API key when the
// cached one is missing or about to expire.
func (c *WMLClient) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry.Add(-tokenRefreshSkew)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.IAMURL+"/identity/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("requesting IAM token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("requesting IAM token: empty access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.logger.Debug().Time("expires_at", c.tokenExpiry).Msg("IAM token refreshed")
	return c.token, nil
}

func (c *WMLClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func firstValue(out scoringResponse) (float64, error) {
	if len(out.Predictions) == 0 || len(out.Predictions[0].Values) == 0 || len(out.Predictions[0].Values[0]) == 0 {
		return 0, errors.New("malformed scoring response: no predictions[0].values[0][0]")
	}

	raw := out.Predictions[0].Values[0][0]
	kwh, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("malformed scoring response: prediction is %T, not a number", raw)
	}
	if math.IsNaN(kwh) || math.IsInf(kwh, 0) {
		return 0, fmt.Errorf("malformed scoring response: prediction is %v", kwh)
	}
	return kwh, nil
}
