package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeNetwork struct {
	data       []byte
	latestErr  error
	rebuildErr error
	gotOpts    *config.RunOptions
}

func (f *fakeNetwork) Latest(context.Context) ([]byte, error) {
	return f.data, f.latestErr
}

func (f *fakeNetwork) Rebuild(_ context.Context, opts config.RunOptions) (*services.RebuildResult, error) {
	f.gotOpts = &opts
	if f.rebuildErr != nil {
		return nil, f.rebuildErr
	}
	q := services.NewQualityReport()
	q.Add(services.AnomalyMissingParty, 3)
	return &services.RebuildResult{
		Row: &models.NetworkData{ID: 9},
		Snapshot: &models.Snapshot{Metadata: models.Metadata{
			RunID:               "run-9",
			CongressRange:       models.CongressRange{Start: 117, End: 118},
			TotalCollaborations: 12,
		}},
		Quality: q,
	}, nil
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network_sql.html"), []byte("<html>network</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	return &config.Config{
		StaticDir:         dir,
		IndexFile:         "network_sql.html",
		CORSAllowedOrigin: "*",
		APISecretKey:      "secret",
		TargetCongress:    117,
		MinCollaborations: 2,
	}
}

func do(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNetworkDataEndpoint(t *testing.T) {
	t.Run("should return the stored document", func(t *testing.T) {
		router := NewRouter(testConfig(t), &fakeNetwork{data: []byte(`{"legislators":[]}`)}, zap.NewNop())

		rec := do(router, http.MethodGet, "/api/network-data", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"legislators":[]}`, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should return 404 without snapshot", func(t *testing.T) {
		router := NewRouter(testConfig(t), &fakeNetwork{latestErr: storage.ErrNoSnapshot}, zap.NewNop())

		rec := do(router, http.MethodGet, "/api/network-data", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"No data available"}`, rec.Body.String())
	})

	t.Run("should return 500 on storage failure", func(t *testing.T) {
		router := NewRouter(testConfig(t), &fakeNetwork{latestErr: errors.New("connection refused")}, zap.NewNop())

		rec := do(router, http.MethodGet, "/api/network-data", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("should answer preflight requests", func(t *testing.T) {
		router := NewRouter(testConfig(t), &fakeNetwork{}, zap.NewNop())

		rec := do(router, http.MethodOptions, "/api/network-data", "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestRebuildEndpoint(t *testing.T) {
	auth := map[string]string{"X-API-KEY": "secret"}

	t.Run("should reject a missing api key", func(t *testing.T) {
		svc := &fakeNetwork{}
		router := NewRouter(testConfig(t), svc, zap.NewNop())

		rec := do(router, http.MethodPost, "/api/network-data/rebuild", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, svc.gotOpts)
	})

	t.Run("should rebuild with configured defaults", func(t *testing.T) {
		svc := &fakeNetwork{}
		router := NewRouter(testConfig(t), svc, zap.NewNop())

		rec := do(router, http.MethodPost, "/api/network-data/rebuild", "", auth)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, config.RunOptions{TargetCongress: 117, MinCollaborations: 2}, *svc.gotOpts)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "run-9", body["run_id"])
		assert.Equal(t, float64(9), body["row_id"])
		assert.Equal(t, float64(12), body["collaborations"])
		assert.Equal(t, map[string]any{"missing_party": float64(3)}, body["anomalies"])
	})

	t.Run("should apply overrides from the body", func(t *testing.T) {
		svc := &fakeNetwork{}
		router := NewRouter(testConfig(t), svc, zap.NewNop())

		rec := do(router, http.MethodPost, "/api/network-data/rebuild", `{"target_congress":118,"min_collaborations":3}`, auth)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, config.RunOptions{TargetCongress: 118, MinCollaborations: 3}, *svc.gotOpts)
	})

	t.Run("should reject an invalid threshold", func(t *testing.T) {
		svc := &fakeNetwork{}
		router := NewRouter(testConfig(t), svc, zap.NewNop())

		rec := do(router, http.MethodPost, "/api/network-data/rebuild", `{"min_collaborations":0}`, auth)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, svc.gotOpts)
	})

	errCases := []struct {
		name string
		err  error
		code int
	}{
		{"in progress", services.ErrRebuildInProgress, http.StatusConflict},
		{"insufficient data", services.ErrNoValidDates, http.StatusUnprocessableEntity},
		{"input error", &services.SourceError{Source: "bills", Err: errors.New("missing column")}, http.StatusBadGateway},
		{"storage error", errors.New("database unavailable"), http.StatusInternalServerError},
	}
	for _, tc := range errCases {
		t.Run("should map "+tc.name, func(t *testing.T) {
			router := NewRouter(testConfig(t), &fakeNetwork{rebuildErr: tc.err}, zap.NewNop())

			rec := do(router, http.MethodPost, "/api/network-data/rebuild", "", auth)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestStaticRoutes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Mkdir(filepath.Join(cfg.StaticDir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "assets", "style.css"), []byte("body{}"), 0o644))
	router := NewRouter(cfg, &fakeNetwork{}, zap.NewNop())

	t.Run("should serve the index page", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "network")
	})

	t.Run("should serve assets", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/app.js", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "console.log(1)", rec.Body.String())
	})

	t.Run("should not list directories", func(t *testing.T) {
		for _, path := range []string{"/assets/", "/assets"} {
			rec := do(router, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
			assert.NotContains(t, rec.Body.String(), "style.css", path)
		}
		rec := do(router, http.MethodGet, "/assets/style.css", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should not escape the static directory", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/../../etc/passwd", "", nil)
		assert.NotEqual(t, http.StatusOK, rec.Code)
	})

	t.Run("should expose health and metrics", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/healthz", "", nil).Code)
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/metrics", "", nil).Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	router := NewRouter(cfg, &fakeNetwork{data: []byte(`{}`)}, zap.NewNop())

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/network-data", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/network-data", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodGet, "/api/network-data", "", nil).Code)
}
