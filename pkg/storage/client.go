// Package storage provides clients for the object-storage collaborator that
// holds uploaded crop images.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client uploads image bytes to object storage.
type Client interface {
	// Upload stores one object and returns its public URL and storage ID.
	Upload(ctx context.Context, obj Object) (*UploadResponse, error)
}

// Object is one file to upload.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResponse identifies the stored object.
type UploadResponse struct {
	URL string `json:"secure_url"`
	ID  string `json:"public_id"`
}

// Option configures the preset upload client.
type Option func(*presetClient)

// WithBaseURL sets a custom upload endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *presetClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *presetClient) {
		c.http = hc
	}
}

// WithFolder sets the destination folder tag attached to every upload.
func WithFolder(folder string) Option {
	return func(c *presetClient) {
		c.folder = folder
	}
}

// presetClient uploads via an unsigned upload preset: no caller-side
// credentials beyond the public preset identifier.
type presetClient struct {
	baseURL string
	preset  string
	folder  string
	http    *http.Client
}

// NewPresetClient creates a client for unsigned preset uploads against the
// given endpoint.
func NewPresetClient(baseURL, preset string, opts ...Option) Client {
	c := &presetClient{
		baseURL: baseURL,
		preset:  preset,
		folder:  "farm-crops",
		http: &http.Client{
			Timeout: 60 * time.Second,
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

func (c *presetClient) Upload(ctx context.Context, obj Object) (*UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", obj.Name)
	if err != nil {
		return nil, eris.Wrap(err, "storage: create form file")
	}
	if _, err := part.Write(obj.Data); err != nil {
		return nil, eris.Wrap(err, "storage: write form file")
	}
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return nil, eris.Wrap(err, "storage: write preset field")
	}
	if err := w.WriteField("folder", c.folder); err != nil {
		return nil, eris.Wrap(err, "storage: write folder field")
	}
	if err := w.Close(); err != nil {
		return nil, eris.Wrap(err, "storage: close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return nil, eris.Wrap(err, "storage: create request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: upload %s", obj.Name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "storage: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("storage: upload %s: status %d: %s", obj.Name, resp.StatusCode, string(body))
	}

	var result UploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "storage: unmarshal response")
	}
	if result.URL == "" {
		return nil, eris.Errorf("storage: upload %s: response missing secure_url", obj.Name)
	}

	return &result, nil
}
