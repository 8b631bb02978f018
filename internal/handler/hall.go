package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"videohalls/internal/repository"
)

// recentHallsLimit is how many halls the public home page shows.
const recentHallsLimit = 3

// HallHandler serves the public browsing pages and the owner's hall CRUD.
// Invalidate, when set, drops the cached public pages affected by a
// mutation; nil leaves stale entries to expire by TTL.
type HallHandler struct {
	Halls      *repository.HallRepo
	Videos     *repository.VideoRepo
	Invalidate func(context.Context, ...string)
}

func NewHallHandler(halls *repository.HallRepo, videos *repository.VideoRepo) *HallHandler {
	if halls == nil || videos == nil {
		panic("nil repository passed to NewHallHandler")
	}
	return &HallHandler{Halls: halls, Videos: videos}
}

func (h *HallHandler) invalidatePages(ctx context.Context, paths ...string) {
	if h.Invalidate != nil {
		h.Invalidate(ctx, paths...)
	}
}

// Home handles GET /. It returns the most recently created halls and needs
// no authentication.
func (h *HallHandler) Home(c echo.Context) error {
	halls, err := h.Halls.ListRecent(c.Request().Context(), recentHallsLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"recent_halls": toHallList(halls)})
}

// Dashboard handles GET /dashboard and lists the caller's halls, newest
// first.
func (h *HallHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	halls, err := h.Halls.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"halls": toHallList(halls)})
}

// CreateHall handles POST /halls/create. An empty title is rejected before
// anything is persisted.
func (h *HallHandler) CreateHall(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title string `json:"title" form:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return fieldErrors(c,
			map[string][]string{"title": {"This field is required."}},
			echo.Map{"title": body.Title})
	}

	hall := &repository.Hall{OwnerID: userID, Title: title}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create hall"})
	}
	h.invalidatePages(c.Request().Context(), "/")
	return c.Redirect(http.StatusFound, "/dashboard")
}

// DetailHall handles GET /halls/:id. The page is public: it returns the
// hall and exactly its videos, or 404 when the hall does not exist.
func (h *HallHandler) DetailHall(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c)
	}
	ctx := c.Request().Context()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	videos, err := h.Videos.ListByHall(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hall":   toHallJSON(hall),
		"videos": toVideoList(videos),
	})
}

// UpdateHall handles POST /halls/:id/update. Only the owner may rename a
// hall; anyone else sees the same 404 as for a missing record.
func (h *HallHandler) UpdateHall(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c)
	}
	ctx := c.Request().Context()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !authorized(userID, hall.OwnerID) {
		return notFound(c)
	}

	var body struct {
		Title string `json:"title" form:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return fieldErrors(c,
			map[string][]string{"title": {"This field is required."}},
			echo.Map{"title": body.Title})
	}

	if err := h.Halls.UpdateTitle(ctx, id, userID, title); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.invalidatePages(ctx, "/", "/halls/"+strconv.FormatUint(id, 10))
	return c.Redirect(http.StatusFound, "/dashboard")
}

// DeleteHall handles POST /halls/:id/delete. Deleting a hall cascades to
// its videos in the repository transaction.
func (h *HallHandler) DeleteHall(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c)
	}
	ctx := c.Request().Context()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !authorized(userID, hall.OwnerID) {
		return notFound(c)
	}

	if err := h.Halls.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return notFound(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidatePages(ctx, "/", "/halls/"+strconv.FormatUint(id, 10))
	return c.Redirect(http.StatusFound, "/dashboard")
}
