package nutrition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoItemBody = `{"items": [
	{"name": "prime rib", "calories": 300.0, "serving_size_g": 396.9, "protein_g": 20.0,
	 "carbohydrates_total_g": 0.0, "fat_total_g": 22.5, "fat_saturated_g": 9.5, "sodium_mg": 140.0},
	{"name": "mashed potatoes", "calories": 150.0, "protein_g": 5.0, "carbohydrates_total_g": 30.0,
	 "fat_total_g": 2.0, "fiber_g": 2.5, "unexpected": "ignored"}
]}`

func TestClient_ParseFoodQuery_Success(t *testing.T) {
	var gotKey, gotQuery, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoItemBody))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", BaseURL: srv.URL})
	resp, err := c.ParseFoodQuery(context.Background(), "14oz prime rib and mashed potatoes")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "14oz prime rib and mashed potatoes", gotQuery)

	require.True(t, resp.Success)
	require.Len(t, resp.Items, 2)
	require.NotNil(t, resp.Items[0].Name)
	assert.Equal(t, "prime rib", *resp.Items[0].Name)
	assert.Nil(t, resp.Items[1].FatSaturatedG)
	assert.JSONEq(t, twoItemBody, string(resp.Raw))
}

func TestClient_ParseFoodQuery_EmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	resp, err := New(Config{BaseURL: srv.URL}).ParseFoodQuery(context.Background(), "air")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Items)
}

func TestClient_ParseFoodQuery_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	resp, err := New(Config{BaseURL: srv.URL}).ParseFoodQuery(context.Background(), "toast")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.False(t, errors.Is(err, ErrTimeout))

	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindStatus, lerr.Kind)
	assert.Equal(t, http.StatusBadGateway, lerr.StatusCode)
	assert.Equal(t, "upstream unavailable", lerr.Message)

	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "API returned status code 502", resp.Error)
	assert.Equal(t, "upstream unavailable", resp.Message)
}

func TestClient_ParseFoodQuery_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	resp, err := c.ParseFoodQuery(context.Background(), "slow soup")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "want timeout, got %v", err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "The request took too long. Please try again.", resp.Message)
}

func TestClient_ParseFoodQuery_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	resp, err := New(Config{BaseURL: baseURL}).ParseFoodQuery(context.Background(), "toast")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport), "want transport, got %v", err)
	assert.False(t, errors.Is(err, ErrTimeout))
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestClient_ParseFoodQuery_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{BaseURL: srv.URL}).ParseFoodQuery(ctx, "toast")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClient_ParseFoodQuery_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	resp, err := New(Config{BaseURL: srv.URL}).ParseFoodQuery(context.Background(), "toast")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, resp.Success)
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestWithHTTPClient_LeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New(Config{Timeout: 2 * time.Second}, WithHTTPClient(shared))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}
