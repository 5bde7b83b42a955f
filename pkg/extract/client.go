// Package extract provides a client for the location-extraction collaborator,
// which derives latitude/longitude from a stored crop image.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrNotSuccessful is returned when the collaborator answers HTTP 200 with
// success=false. Callers must treat this as a failure.
var ErrNotSuccessful = errors.New("extract: service reported failure")

// ErrNoCoordinates is returned when the response arrived but carries no
// usable coordinates.
var ErrNoCoordinates = errors.New("extract: response missing coordinates")

// Client requests geocoordinates for stored images.
type Client interface {
	// Extract returns the coordinates embedded in the image at imageURL.
	Extract(ctx context.Context, imageName, imageURL string) (*Location, error)
}

// Location is the extracted coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type extractRequest struct {
	EmailID   string `json:"emailId"`
	ImageName string `json:"imageName"`
	ImageURL  string `json:"imageUrl"`
}

type extractResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"data"`
}

// Option configures the extraction client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for extraction calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type httpClient struct {
	baseURL  string
	identity string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates an extraction client. identity is the static caller
// identifier sent with every request.
func NewClient(baseURL, identity string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  baseURL,
		identity: identity,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Extract(ctx context.Context, imageName, imageURL string) (*Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: rate limit wait")
	}

	payload, err := json.Marshal(extractRequest{
		EmailID:   c.identity,
		ImageName: imageName,
		ImageURL:  imageURL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-latitude-longitude", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "extract: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: request for %s", imageName)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("extract: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "extract: unmarshal response")
	}

	// success=false on HTTP 200 is still a failure.
	if !result.Success {
		return nil, eris.Wrapf(ErrNotSuccessful, "extract: %s", imageName)
	}
	if result.Data == nil || result.Data.Latitude == nil || result.Data.Longitude == nil {
		return nil, eris.Wrapf(ErrNoCoordinates, "extract: %s", imageName)
	}

	return &Location{
		Latitude:  *result.Data.Latitude,
		Longitude: *result.Data.Longitude,
	}, nil
}
