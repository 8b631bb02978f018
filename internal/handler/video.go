package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"videohalls/internal/queue"
	"videohalls/internal/repository"
	"videohalls/internal/youtube"
)

// urlErrNotYouTube is the field error for URLs without a resolvable video
// id, and for ids YouTube reports no metadata for. A video is never
// persisted without a title.
const urlErrNotYouTube = "Needs to be a YouTube URL"

// urlErrUpstream is the field error when YouTube cannot be reached.
const urlErrUpstream = "Could not reach YouTube. Try again."

// VideoHandler serves attaching and removing videos. Publish, when set, is
// invoked after a video is persisted; its error is ignored so a broker
// outage never fails the request. Invalidate, when set, drops the cached
// detail page of the mutated hall.
type VideoHandler struct {
	Halls      *repository.HallRepo
	Videos     *repository.VideoRepo
	Meta       *youtube.Client
	Publish    func(context.Context, queue.VideoAddedEvent) error
	Invalidate func(context.Context, ...string)
}

func NewVideoHandler(halls *repository.HallRepo, videos *repository.VideoRepo, meta *youtube.Client) *VideoHandler {
	if halls == nil || videos == nil || meta == nil {
		panic("nil dependency passed to NewVideoHandler")
	}
	return &VideoHandler{Halls: halls, Videos: videos, Meta: meta}
}

func (h *VideoHandler) invalidatePages(ctx context.Context, paths ...string) {
	if h.Invalidate != nil {
		h.Invalidate(ctx, paths...)
	}
}

// AddVideoForm handles GET /halls/:id/add_video: the form context for the
// hall, owner only.
func (h *VideoHandler) AddVideoForm(c echo.Context) error {
	hall, err := h.ownedHall(c)
	if hall == nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hall": toHallJSON(hall),
		"form": []string{"url"},
	})
}

// AddVideo handles POST /halls/:id/add_video. The submitted URL must
// resolve to a YouTube video id and the metadata lookup must return a
// title; otherwise the form is returned with a field error and the prior
// input preserved, and nothing is persisted.
func (h *VideoHandler) AddVideo(c echo.Context) error {
	hall, err := h.ownedHall(c)
	if hall == nil {
		return err
	}

	var body struct {
		URL string `json:"url" form:"url"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	rawURL := strings.TrimSpace(body.URL)
	if rawURL == "" {
		return fieldErrors(c,
			map[string][]string{"url": {"This field is required."}},
			echo.Map{"url": body.URL})
	}

	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		return fieldErrors(c,
			map[string][]string{"url": {urlErrNotYouTube}},
			echo.Map{"url": rawURL})
	}

	title, err := h.Meta.FetchVideo(c.Request().Context(), videoID)
	if err != nil {
		// An id YouTube knows nothing about is a bad URL as far as the
		// user is concerned; anything else is an upstream failure.
		msg := urlErrUpstream
		if errors.Is(err, youtube.ErrNoResults) {
			msg = urlErrNotYouTube
		}
		return fieldErrors(c,
			map[string][]string{"url": {msg}},
			echo.Map{"url": rawURL})
	}

	video := &repository.Video{
		HallID:    hall.ID,
		URL:       rawURL,
		YouTubeID: videoID,
		Title:     title,
	}
	if err := h.Videos.Create(c.Request().Context(), video); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save video"})
	}

	if h.Publish != nil {
		_ = h.Publish(c.Request().Context(), queue.VideoAddedEvent{
			VideoID:   video.ID,
			HallID:    hall.ID,
			OwnerID:   hall.OwnerID,
			YouTubeID: video.YouTubeID,
			Title:     video.Title,
			AddedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	h.invalidatePages(c.Request().Context(), fmt.Sprintf("/halls/%d", hall.ID))
	return c.Redirect(http.StatusFound, fmt.Sprintf("/halls/%d", hall.ID))
}

// DeleteVideo handles POST /videos/:id/delete. Ownership is transitive
// through the video's hall; a non-owner gets the same 404 as for a missing
// video.
func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c)
	}
	ctx := c.Request().Context()

	hallID, ownerID, err := h.Videos.OwnerOf(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !authorized(userID, ownerID) {
		return notFound(c)
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidatePages(ctx, fmt.Sprintf("/halls/%d", hallID))
	return c.Redirect(http.StatusFound, "/dashboard")
}

// ownedHall loads the hall from the :id path parameter and enforces the
// ownership guard. A missing hall and a foreign hall produce the same 404
// response. A nil hall means the response has already been written and the
// caller must return the accompanying error as-is (it may be nil).
func (h *VideoHandler) ownedHall(c echo.Context) (*repository.Hall, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, notFound(c)
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return nil, notFound(c)
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !authorized(userID, hall.OwnerID) {
		return nil, notFound(c)
	}
	return hall, nil
}
