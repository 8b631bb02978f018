package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"videohalls/internal/config"
)

// captureWriter captures the response body and status while forwarding to
// the client, up to a byte limit.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// pageKey hashes a concrete request path into a stable cache key. The
// cached routes take no query parameters, so the path alone identifies the
// page and mutations can delete entries deterministically.
func pageKey(prefix, path string) string {
	sum := sha1.Sum([]byte(path))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// encodePage packs [4 bytes status][body]; decodePage reverses it.
func encodePage(status int, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	copy(out[4:], body)
	return out
}

func decodePage(bs []byte) (status int, body []byte, ok bool) {
	if len(bs) < 4 {
		return 0, nil, false
	}
	return int(binary.BigEndian.Uint32(bs[0:4])), bs[4:], true
}

// PageCache caches GET responses of public database-backed pages (home,
// hall detail) in Redis. Mount its middleware only on routes whose content
// comes from our own store; proxied YouTube payloads must never pass
// through here. With a nil client or a disabled config the middleware is a
// pass-through and Invalidate is a no-op.
type PageCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewPageCache builds a PageCache. rdb may be nil; the cache then degrades
// to a pass-through.
func NewPageCache(cfg config.CacheConfig, rdb *redis.Client) *PageCache {
	return &PageCache{cfg: cfg, rdb: rdb}
}

func (p *PageCache) enabled() bool { return p.cfg.Enabled && p.rdb != nil }

// keyFor derives the cache key for a request. It must use the concrete URL
// path: the registered route pattern is the same for every hall, and keying
// on it would serve one hall's page for all of them.
func (p *PageCache) keyFor(c echo.Context) string {
	return pageKey(p.cfg.Prefix, c.Request().URL.Path)
}

// Middleware returns the caching middleware for GET pages.
func (p *PageCache) Middleware() echo.MiddlewareFunc {
	if !p.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := p.keyFor(c)

			if bs, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, body, ok := decodePage(bs); ok {
					c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(p.cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only successful, fully captured responses are cached.
			if cw.status == http.StatusOK && cw.size <= int64(p.cfg.MaxBodyBytes) {
				_ = p.rdb.SetEx(context.Background(), key, encodePage(cw.status, cw.buf.Bytes()), p.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// Invalidate drops the cached pages for the given request paths. Handlers
// call it after a mutation so home and hall-detail pages never serve
// content older than the write. Deletion failures are ignored; the entry
// then expires by TTL.
func (p *PageCache) Invalidate(ctx context.Context, paths ...string) {
	if !p.enabled() || len(paths) == 0 {
		return
	}
	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		keys = append(keys, pageKey(p.cfg.Prefix, path))
	}
	_ = p.rdb.Del(ctx, keys...).Err()
}
