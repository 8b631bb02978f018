package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Hall is a user-owned named collection of videos.
type Hall struct {
	ID      uint64 // halls.id
	OwnerID uint64 // halls.owner_id, never changes after creation
	Title   string // halls.title
}

// HallRepo provides methods to create and retrieve halls.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall. OwnerID and Title must be set; after insert
// the ID field of the hall is populated.
func (r *HallRepo) Create(ctx context.Context, h *Hall) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO halls (owner_id, title) VALUES (?, ?)",
		h.OwnerID, h.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID retrieves a hall by its ID regardless of owner. It returns
// ErrHallNotFound when no row exists.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*Hall, error) {
	var h Hall
	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, title FROM halls WHERE id = ?",
		id).Scan(&h.ID, &h.OwnerID, &h.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListByOwner returns all halls belonging to a user, newest first.
func (r *HallRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Hall, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, title FROM halls WHERE owner_id = ? ORDER BY id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHalls(rows)
}

// ListRecent returns the most recently created halls across all owners,
// newest first, capped at limit. Used by the public home page.
func (r *HallRepo) ListRecent(ctx context.Context, limit int) ([]*Hall, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, title FROM halls ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHalls(rows)
}

// UpdateTitle changes a hall's title. The owner predicate is part of the
// statement so a concurrent owner change can never slip through. Returns
// ErrHallNotFound when no row matched.
func (r *HallRepo) UpdateTitle(ctx context.Context, id, ownerID uint64, title string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE halls SET title = ? WHERE id = ? AND owner_id = ?",
		title, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}

// Delete removes a hall and all of its videos in one transaction. Returns
// ErrHallNotFound when the hall does not exist.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE hall_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM halls WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return tx.Commit()
}

func scanHalls(rows *sql.Rows) ([]*Hall, error) {
	var out []*Hall
	for rows.Next() {
		h := new(Hall)
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Title); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
