package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

// HTTPClient consults an external URL-reputation API over HTTP. The engine
// never calls out itself; this client is composed by the service layer with
// its own timeout policy.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient creates a reputation client for the given endpoint
func NewHTTPClient(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type checkRequest struct {
	URL string `json:"url"`
}

// CheckURL submits a URL for reputation lookup
func (c *HTTPClient) CheckURL(ctx context.Context, url string) (*core.ReputationResult, error) {
	body, err := json.Marshal(checkRequest{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reputation service returned status %d", resp.StatusCode)
	}

	var result core.ReputationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("URL reputation checked",
		zap.String("url", url),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.Float64("confidence", result.Confidence))

	return &result, nil
}
