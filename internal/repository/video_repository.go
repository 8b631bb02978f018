package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Video references one YouTube item inside a hall. YouTubeID and Title are
// derived from the metadata lookup at creation time and are immutable; no
// update path exists.
type Video struct {
	ID        uint64 // videos.id
	HallID    uint64 // videos.hall_id
	URL       string // videos.url as submitted
	YouTubeID string // videos.youtube_id extracted from URL
	Title     string // videos.title from the metadata lookup
}

// VideoRepo provides methods to create and retrieve videos.
type VideoRepo struct {
	db *sql.DB
}

// NewVideoRepo constructs a VideoRepo with the given DB handle.
func NewVideoRepo(db *sql.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// Create inserts a new video and populates its ID.
func (r *VideoRepo) Create(ctx context.Context, v *Video) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO videos (hall_id, url, youtube_id, title) VALUES (?, ?, ?, ?)",
		v.HallID, v.URL, v.YouTubeID, v.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID retrieves a video by its ID. Returns ErrVideoNotFound when no
// row exists.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (*Video, error) {
	var v Video
	err := r.db.QueryRowContext(ctx,
		"SELECT id, hall_id, url, youtube_id, title FROM videos WHERE id = ?",
		id).Scan(&v.ID, &v.HallID, &v.URL, &v.YouTubeID, &v.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByHall returns all videos attached to a hall in insertion order.
func (r *VideoRepo) ListByHall(ctx context.Context, hallID uint64) ([]*Video, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, hall_id, url, youtube_id, title FROM videos WHERE hall_id = ? ORDER BY id",
		hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Video
	for rows.Next() {
		v := new(Video)
		if err := rows.Scan(&v.ID, &v.HallID, &v.URL, &v.YouTubeID, &v.Title); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// OwnerOf resolves a video's hall and owning user through the hall join.
// Returns ErrVideoNotFound when the video does not exist.
func (r *VideoRepo) OwnerOf(ctx context.Context, videoID uint64) (hallID, ownerID uint64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT v.hall_id, h.owner_id FROM videos v JOIN halls h ON h.id = v.hall_id WHERE v.id = ?`,
		videoID).Scan(&hallID, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrVideoNotFound
		}
		return 0, 0, err
	}
	return hallID, ownerID, nil
}

// Delete removes a single video. Returns ErrVideoNotFound when no row
// matched.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVideoNotFound
	}
	return nil
}
