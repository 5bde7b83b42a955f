// Package plantapi provides a client for the plant persistence collaborator,
// the remote store of record for saved plant locations.
package plantapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client saves and fetches plant location records.
type Client interface {
	// Save persists one record and returns the server's (possibly enriched)
	// copy, or nil if the server acknowledged without echoing a record.
	Save(ctx context.Context, rec Record) (*Record, error)
	// FetchAll returns every record stored for the configured identity.
	FetchAll(ctx context.Context) ([]Record, error)
}

// Record is the wire form of a plant location record.
type Record struct {
	ImageName string  `json:"imageName"`
	ImageURL  string  `json:"imageUrl"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type saveRequest struct {
	EmailID string `json:"emailId"`
	Record
}

type saveResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Data    *Record `json:"data,omitempty"`
}

type fetchRequest struct {
	EmailID string `json:"emailId"`
}

type fetchResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    []Record `json:"data"`
}

// Option configures the plantapi client.
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

type httpClient struct {
	baseURL  string
	identity string
	http     *http.Client
}

// NewClient creates a persistence client. identity is the static caller
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
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Save(ctx context.Context, rec Record) (*Record, error) {
	body, err := c.post(ctx, "/save-plant-location-data", saveRequest{
		EmailID: c.identity,
		Record:  rec,
	})
	if err != nil {
		return nil, err
	}

	var result saveResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "plantapi: unmarshal save response")
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "save rejected"
		}
		return nil, eris.Errorf("plantapi: save %s: %s", rec.ImageName, msg)
	}

	return result.Data, nil
}

func (c *httpClient) FetchAll(ctx context.Context) ([]Record, error) {
	body, err := c.post(ctx, "/get-plant-location-data", fetchRequest{EmailID: c.identity})
	if err != nil {
		return nil, err
	}

	var result fetchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "plantapi: unmarshal fetch response")
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "fetch rejected"
		}
		return nil, eris.Errorf("plantapi: fetch: %s", msg)
	}

	return result.Data, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "plantapi: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "plantapi: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "plantapi: request %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "plantapi: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("plantapi: %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}

	return body, nil
}
