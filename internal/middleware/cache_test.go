package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videohalls/internal/config"
)

func hallContext(e *echo.Echo, target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	// The registered pattern is identical for every hall; only the
	// concrete path differs.
	c.SetPath("/halls/:id")
	return c
}

func TestPageCacheKeysByConcretePath(t *testing.T) {
	p := NewPageCache(config.CacheConfig{Prefix: "cache"}, nil)
	e := echo.New()

	k1 := p.keyFor(hallContext(e, "/halls/1"))
	k2 := p.keyFor(hallContext(e, "/halls/2"))
	assert.NotEqual(t, k1, k2, "two halls must never share a cache entry")

	// Invalidation by request path addresses exactly the key the
	// middleware writes for that page.
	assert.Equal(t, k1, pageKey("cache", "/halls/1"))
	assert.Equal(t, k2, pageKey("cache", "/halls/2"))
	assert.NotEqual(t, k1, pageKey("cache", "/"))
}

func TestPageCacheDisabledIsPassThrough(t *testing.T) {
	tests := map[string]*PageCache{
		"disabled config": NewPageCache(config.CacheConfig{Enabled: false}, nil),
		"no redis":        NewPageCache(config.CacheConfig{Enabled: true}, nil),
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/halls/:id", func(c echo.Context) error {
				return c.String(http.StatusOK, "hall "+c.Param("id"))
			}, p.Middleware())

			for _, target := range []string{"/halls/1", "/halls/2"} {
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
				require.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "hall "+target[len("/halls/"):], rec.Body.String())
				assert.Empty(t, rec.Header().Get("X-Cache"))
			}

			// Without a backend, invalidation is a no-op.
			p.Invalidate(context.Background(), "/", "/halls/1")
		})
	}
}

func TestEncodeDecodePage(t *testing.T) {
	status, body, ok := decodePage(encodePage(http.StatusOK, []byte(`{"hall":1}`)))
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []byte(`{"hall":1}`), body)

	_, _, ok = decodePage([]byte{0, 0})
	assert.False(t, ok, "truncated entries must not decode")
}

func TestCaptureWriterHonorsLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, err := cw.Write([]byte("abcdef"))
	require.NoError(t, err)

	// The client gets the full body; the capture stops at the limit and
	// the recorded size flags the entry as uncacheable.
	assert.Equal(t, "abcdef", rec.Body.String())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
}
