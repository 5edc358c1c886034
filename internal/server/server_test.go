package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/config"
	ws "github.com/conneroisu/buttonbook/internal/websocket"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        6006,
			Host:        "localhost",
			Environment: "production",
		},
		Catalog:     config.CatalogConfig{Title: catalog.DefaultTitle},
		Development: config.DevelopmentConfig{HotReload: true},
		Log:         config.LogConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, cat *catalog.Catalog) (*PreviewServer, *httptest.Server) {
	t.Helper()

	if cat == nil {
		cat = catalog.NewDefault("")
	}
	srv, err := New(cfg, cat, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestNew_RequiresConfigAndCatalog(t *testing.T) {
	_, err := New(nil, catalog.NewDefault(""), nil)
	assert.Error(t, err)

	_, err = New(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		contains    []string
	}{
		{
			name:        "index selects first story",
			path:        "/",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{"I am the default story button", `class="active"`, "background-color: #2e8b57"},
		},
		{
			name:        "story by name",
			path:        "/story/Primary",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{"I am the primary story button", "background-color: #FFEFD5"},
		},
		{
			name:        "story by id",
			path:        "/story/secondary",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{"I am the secondary story button", "background-color: #FA8072"},
		},
		{
			name:        "controls override args",
			path:        "/story/Default?text=Hello&variant=secondary",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{">Hello</button>", "background-color: #FA8072"},
		},
		{
			name:        "render fragment",
			path:        "/render/Primary",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{`<button type="button"`, "I am the primary story button"},
		},
		{
			name:        "unknown variant falls back to default",
			path:        "/render/Primary?variant=tertiary",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{"background-color: #2e8b57"},
		},
		{
			name:   "unknown story",
			path:   "/story/Missing",
			status: http.StatusNotFound,
		},
		{
			name:   "unknown story fragment",
			path:   "/render/Missing",
			status: http.StatusNotFound,
		},
		{
			name:   "invalid story name",
			path:   "/story/bad%3Cscript%3E",
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown route",
			path:   "/nope",
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			}
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestIndex_EmptyCatalog(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), catalog.New(catalog.DefaultMeta("")))

	resp, _ := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIStories(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)

	resp, body := get(t, ts.URL+"/api/stories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var stories []StoryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &stories))
	require.Len(t, stories, 3)

	assert.Equal(t, "default", stories[0].ID)
	assert.Equal(t, "#2e8b57", stories[0].Background)
	assert.False(t, stories[0].KnownVariant)
	assert.Equal(t, "Primary", stories[1].Name)
	assert.Equal(t, "#FFEFD5", stories[1].Background)
	assert.True(t, stories[1].KnownVariant)
	assert.Equal(t,
		"background-color: #FA8072; border: none; cursor: pointer; border-radius: 16px; padding: 18px 24px",
		stories[2].CSS)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, testConfig(), nil)

	resp, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Version)
	assert.Equal(t, 3, health.Stories)

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AllowedOrigins = []string{"http://example.com"}
	_, ts := newTestServer(t, cfg, nil)

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"configured origin", "http://example.com", "http://example.com"},
		{"own address", "http://localhost:6006", "http://localhost:6006"},
		{"foreign origin", "http://evil.example", ""},
		{"no origin", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
			require.NoError(t, err)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/stories", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://example.com")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	})
}

func TestIsAllowedOrigin_Development(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Environment = "development"
	srv, err := New(cfg, catalog.NewDefault(""), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	assert.True(t, srv.isAllowedOrigin("http://anything.test"))
	assert.False(t, srv.isAllowedOrigin(""))
}

const storiesYAML = `title: Button
stories:
  - name: Default
    args:
      text: first
`

func TestHandleStoriesChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stories.yml")
	require.NoError(t, os.WriteFile(path, []byte(storiesYAML), 0o644))

	cat := catalog.New(catalog.DefaultMeta(""))
	require.NoError(t, cat.Reload(path))

	cfg := testConfig()
	cfg.Catalog.StoriesFile = path
	srv, ts := newTestServer(t, cfg, cat)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool {
		return srv.wsManager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	readMessage := func() ws.UpdateMessage {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg ws.UpdateMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	t.Run("valid change reloads", func(t *testing.T) {
		updated := strings.Replace(storiesYAML, "first", "second", 1) +
			"  - name: Primary\n    args:\n      text: hi\n      variant: primary\n"
		require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

		require.NoError(t, srv.handleStoriesChange(nil))

		msg := readMessage()
		assert.Equal(t, ws.MessageReload, msg.Type)
		assert.Equal(t, 2, cat.Count())

		_, body := get(t, ts.URL+"/")
		assert.Contains(t, body, ">second</button>")
		assert.NotContains(t, body, `id="reload-error"`)
	})

	t.Run("invalid change keeps stories and shows overlay", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("title: [broken"), 0o644))

		require.NoError(t, srv.handleStoriesChange(nil))

		msg := readMessage()
		assert.Equal(t, ws.MessageError, msg.Type)
		assert.NotEmpty(t, msg.Content)
		assert.Equal(t, 2, cat.Count())

		_, body := get(t, ts.URL+"/")
		assert.Contains(t, body, `id="reload-error"`)
	})
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, err := New(testConfig(), catalog.NewDefault(""), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, srv.Shutdown(ctx))
}
