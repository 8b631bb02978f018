package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"videohalls/internal/config"
	"videohalls/internal/handler"
	"videohalls/internal/middleware"
	"videohalls/internal/repository"
	"videohalls/internal/router"
	"videohalls/internal/utils"
	"videohalls/internal/youtube"
)

const testSchema = `
CREATE TABLE users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
);
CREATE TABLE refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    token_hash TEXT NOT NULL,
    expires_at INTEGER NOT NULL,
    revoked_at INTEGER
);
CREATE TABLE halls (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id INTEGER NOT NULL REFERENCES users(id),
    title    TEXT NOT NULL
);
CREATE TABLE videos (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    hall_id    INTEGER NOT NULL REFERENCES halls(id),
    url        TEXT NOT NULL,
    youtube_id TEXT NOT NULL,
    title      TEXT NOT NULL
);
`

// ytStub fakes the YouTube Data API. Titles maps known video ids to their
// titles; unknown ids produce a zero-item response. When FailStatus is set
// every call answers with that HTTP status instead.
type ytStub struct {
	Titles        map[string]string
	SearchPayload string
	FailStatus    int
}

func (s *ytStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.FailStatus != 0 {
			http.Error(w, "upstream failure", s.FailStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			title, ok := s.Titles[r.URL.Query().Get("id")]
			if !ok {
				_, _ = w.Write([]byte(`{"items":[]}`))
				return
			}
			body, _ := json.Marshal(map[string]any{
				"items": []any{map[string]any{"snippet": map[string]any{"title": title}}},
			})
			_, _ = w.Write(body)
		case strings.HasSuffix(r.URL.Path, "/search"):
			_, _ = w.Write([]byte(s.SearchPayload))
		default:
			http.NotFound(w, r)
		}
	}
}

// env is a fully wired application over an in-memory store and a stubbed
// YouTube API.
type env struct {
	t      *testing.T
	e      *echo.Echo
	db     *sql.DB
	cfg    config.Config
	yt     *ytStub
	users  *repository.UserRepo
	halls  *repository.HallRepo
	videos *repository.VideoRepo
	tokens *repository.TokenRepo
	hh     *handler.HallHandler
	vh     *handler.VideoHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	yt := &ytStub{
		Titles:        map[string]string{},
		SearchPayload: `{"kind":"youtube#searchListResponse","items":[]}`,
	}
	srv := httptest.NewServer(yt.handler())
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
		YouTubeKey:     "test-key",
		YouTubeTimeout: time.Second,
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	halls := repository.NewHallRepo(db)
	videos := repository.NewVideoRepo(db)
	meta := youtube.New(cfg.YouTubeKey, cfg.YouTubeTimeout).WithBaseURL(srv.URL)

	pageCache := middleware.NewPageCache(config.CacheConfig{}, nil) // pass-through
	hh := handler.NewHallHandler(halls, videos)
	hh.Invalidate = pageCache.Invalidate
	vh := handler.NewVideoHandler(halls, videos, meta)
	vh.Invalidate = pageCache.Invalidate

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, tokens),
		Halls:  hh,
		Videos: vh,
		Search: handler.NewSearchHandler(meta),
	}

	e := echo.New()
	router.Register(e, h, cfg.JWTSecret, pageCache.Middleware())

	return &env{t: t, e: e, db: db, cfg: cfg, yt: yt,
		users: users, halls: halls, videos: videos, tokens: tokens,
		hh: hh, vh: vh}
}

// newUser creates an account directly in the store and returns its id with
// a valid bearer token.
func (v *env) newUser(username string) (uint64, string) {
	v.t.Helper()
	id, err := v.users.Create(context.Background(), username, "password123", v.cfg.BcryptCost)
	require.NoError(v.t, err)
	at, err := utils.NewAccessToken(v.cfg.JWTSecret, id, v.cfg.AccessTTLMin)
	require.NoError(v.t, err)
	return id, at.Token
}

func (v *env) newHall(ownerID uint64, title string) *repository.Hall {
	v.t.Helper()
	h := &repository.Hall{OwnerID: ownerID, Title: title}
	require.NoError(v.t, v.halls.Create(context.Background(), h))
	return h
}

func (v *env) newVideo(hallID uint64, ytID, title string) *repository.Video {
	v.t.Helper()
	vid := &repository.Video{
		HallID:    hallID,
		URL:       "https://youtube.com/watch?v=" + ytID,
		YouTubeID: ytID,
		Title:     title,
	}
	require.NoError(v.t, v.videos.Create(context.Background(), vid))
	return vid
}

// get performs a GET request, optionally authenticated.
func (v *env) get(target, token string) *httptest.ResponseRecorder {
	v.t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

// postForm performs a form-encoded POST, optionally authenticated.
func (v *env) postForm(target string, form url.Values, token string) *httptest.ResponseRecorder {
	v.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

// decode unmarshals a recorded JSON body into out.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// fieldErrorsOf pulls the per-field messages out of a 422 response.
func fieldErrorsOf(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	decode(t, rec, &body)
	return body.Errors
}
