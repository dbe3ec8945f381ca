package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-tracker/internal/config"
	"food-tracker/internal/tracker"
)

func TestNew(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		cfg := config.NewConfig(t.TempDir())
		cfg.Database.Type = "memory"

		var stderr bytes.Buffer
		a, err := New(cfg, &stderr)
		require.NoError(t, err)
		defer a.Close()

		entry, err := a.Service().LogManual(context.Background(), tracker.ManualInput{Name: "Toast", Calories: 80})
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)

		assert.Contains(t, stderr.String(), "food logged")
		logged, err := os.ReadFile(filepath.Join(cfg.LogDir, logFileName))
		require.NoError(t, err)
		assert.Contains(t, string(logged), "food logged")
	})

	t.Run("sqlite database persists across apps", func(t *testing.T) {
		cfg := config.NewConfig(t.TempDir())

		a, err := New(cfg, &bytes.Buffer{})
		require.NoError(t, err)
		_, err = a.Service().LogManual(context.Background(), tracker.ManualInput{Name: "Toast"})
		require.NoError(t, err)
		require.NoError(t, a.Close())

		b, err := New(cfg, &bytes.Buffer{})
		require.NoError(t, err)
		defer b.Close()

		entries, err := b.Service().List(context.Background(), tracker.ListInput{})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := config.NewConfig(t.TempDir())
		cfg.Database.Type = "memory"
		cfg.Logging.Level = "loud"

		_, err := New(cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := config.NewConfig(t.TempDir())
		cfg.Database.Type = "mongo"

		_, err := New(cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestNewServer_Overrides(t *testing.T) {
	cfg := config.NewConfig(t.TempDir())
	cfg.Database.Type = "memory"

	a, err := New(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Close()

	srv := a.NewServer("127.0.0.1", 9999)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Len(t, health.Tools, 8)
}
