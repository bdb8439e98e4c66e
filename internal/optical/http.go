package optical

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// DefaultURL is where the grid analysis service listens by default.
const DefaultURL = "http://localhost:5001"

// HTTPSource asks a remote image-analysis service to locate the pattern in
// a photograph and return its cell grid.
type HTTPSource struct {
	baseURL string
	size    int
	client  *http.Client
	logger  *zap.Logger
}

type gridRequest struct {
	Image    string `json:"image"`
	GridSize int    `json:"grid_size"`
}

type gridResponse struct {
	Grid       [][]bool `json:"grid"`
	Confidence float64  `json:"confidence"`
	Detail     string   `json:"detail"`
}

// Health is the service's status report.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// NewHTTPSource creates a source for n×n grids. An empty baseURL uses
// $MEMORY_STITCH_OPTICAL_URL, then DefaultURL.
func NewHTTPSource(baseURL string, n int, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if baseURL == "" {
		baseURL = os.Getenv("MEMORY_STITCH_OPTICAL_URL")
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		baseURL: baseURL,
		size:    n,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Analyze uploads image and returns the grid found in it. A service that
// answers 404 or 422 produced no grid and yields Missing; other non-200
// answers and transport failures are errors.
func (s *HTTPSource) Analyze(ctx context.Context, image []byte) (Result, error) {
	body, _ := json.Marshal(gridRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		GridSize: s.size,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/grid", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grid request failed: %w", err)
	}
	defer resp.Body.Close()

	s.logger.Debug("grid analysis response",
		zap.Int("status", resp.StatusCode),
		zap.Int("image_bytes", len(image)),
		zap.Duration("elapsed", time.Since(start)))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		var result gridResponse
		json.NewDecoder(resp.Body).Decode(&result)
		reason := result.Detail
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		s.logger.Info("no grid detected", zap.String("reason", reason))
		return Missing{Reason: reason}, nil
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("grid service error %d: %s", resp.StatusCode, string(b))
	}

	var result gridResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode grid response: %w", err)
	}
	if len(result.Grid) == 0 {
		reason := result.Detail
		if reason == "" {
			reason = "no grid in response"
		}
		return Missing{Reason: reason}, nil
	}
	if len(result.Grid) != s.size {
		return nil, fmt.Errorf("grid service returned %d rows, want %d", len(result.Grid), s.size)
	}
	for i, row := range result.Grid {
		if len(row) != s.size {
			return nil, fmt.Errorf("grid service row %d has %d cells, want %d", i, len(row), s.size)
		}
	}

	return Found{Grid: result.Grid, Confidence: min(max(result.Confidence, 0), 1)}, nil
}

// Health queries the service's health endpoint.
func (s *HTTPSource) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("health error %d: %s", resp.StatusCode, string(b))
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}
