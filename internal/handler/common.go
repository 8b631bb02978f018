// Package handler contains the HTTP handlers: public browsing, the
// authenticated dashboard and hall/video mutations, YouTube search and the
// auth endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"videohalls/internal/repository"
)

// getUserID extracts the user_id placed in context by the JWT middleware
// and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// authorized is the ownership guard: it reports whether actorID may read or
// mutate a record owned by ownerID. Anonymous actors (id 0) are never
// authorized. Handlers respond with notFound on failure so an unauthorized
// request is indistinguishable from a missing record.
func authorized(actorID, ownerID uint64) bool {
	return actorID != 0 && actorID == ownerID
}

// notFound is the uniform response for missing records and unauthorized
// access alike.
func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

// fieldErrors renders a failed form submission: per-field messages plus the
// submitted values so the client can re-render the form with prior input.
func fieldErrors(c echo.Context, errs map[string][]string, form echo.Map) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs, "form": form})
}

// hallJSON is the wire representation of a hall.
type hallJSON struct {
	ID      uint64 `json:"id"`
	OwnerID uint64 `json:"owner_id"`
	Title   string `json:"title"`
}

// videoJSON is the wire representation of a video.
type videoJSON struct {
	ID        uint64 `json:"id"`
	HallID    uint64 `json:"hall_id"`
	URL       string `json:"url"`
	YouTubeID string `json:"youtube_id"`
	Title     string `json:"title"`
}

func toHallJSON(h *repository.Hall) hallJSON {
	return hallJSON{ID: h.ID, OwnerID: h.OwnerID, Title: h.Title}
}

func toHallList(halls []*repository.Hall) []hallJSON {
	out := make([]hallJSON, 0, len(halls))
	for _, h := range halls {
		out = append(out, toHallJSON(h))
	}
	return out
}

func toVideoList(videos []*repository.Video) []videoJSON {
	out := make([]videoJSON, 0, len(videos))
	for _, v := range videos {
		out = append(out, videoJSON{ID: v.ID, HallID: v.HallID, URL: v.URL, YouTubeID: v.YouTubeID, Title: v.Title})
	}
	return out
}
