package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract-latitude-longitude", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "farmer@example.com", req["emailId"])
		assert.Equal(t, "plant1.jpg", req["imageName"])
		assert.Equal(t, "https://cdn/x/plant1.jpg", req["imageUrl"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"latitude":12.9,"longitude":77.6}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "farmer@example.com")
	got, err := client.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")

	require.NoError(t, err)
	assert.InDelta(t, 12.9, got.Latitude, 1e-9)
	assert.InDelta(t, 77.6, got.Longitude, 1e-9)
}

func TestExtract_SuccessFalseOn200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "farmer@example.com")
	_, err := client.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSuccessful)
}

func TestExtract_MissingCoordinates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"no data", `{"success":true}`},
		{"empty data", `{"success":true,"data":{}}`},
		{"latitude only", `{"success":true,"data":{"latitude":12.9}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "farmer@example.com")
			_, err := client.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoCoordinates)
		})
	}
}

func TestExtract_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "farmer@example.com")
	_, err := client.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.NotErrorIs(t, err, ErrNotSuccessful)
}

func TestExtract_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "farmer@example.com")
	_, err := client.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestExtract_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "farmer@example.com")
	_, err := client.Extract(ctx, "plant1.jpg", "https://cdn/x/plant1.jpg")

	require.Error(t, err)
}
