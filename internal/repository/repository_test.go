package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// schema is the SQLite equivalent of the MySQL tables; the SQL in the
// repositories is written to work against both.
const schema = `
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

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func mustCreateUser(t *testing.T, db *sql.DB, username string) uint64 {
	t.Helper()
	id, err := NewUserRepo(db).Create(context.Background(), username, "password123", bcrypt.MinCost)
	require.NoError(t, err)
	return id
}

func mustCreateHall(t *testing.T, db *sql.DB, ownerID uint64, title string) *Hall {
	t.Helper()
	h := &Hall{OwnerID: ownerID, Title: title}
	require.NoError(t, NewHallRepo(db).Create(context.Background(), h))
	return h
}

func mustCreateVideo(t *testing.T, db *sql.DB, hallID uint64, ytID, title string) *Video {
	t.Helper()
	v := &Video{
		HallID:    hallID,
		URL:       "https://youtube.com/watch?v=" + ytID,
		YouTubeID: ytID,
		Title:     title,
	}
	require.NoError(t, NewVideoRepo(db).Create(context.Background(), v))
	return v
}
