package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"videohalls/internal/youtube"
)

// SearchHandler proxies free-text video search to the YouTube Data API.
type SearchHandler struct {
	Meta *youtube.Client
}

func NewSearchHandler(meta *youtube.Client) *SearchHandler {
	if meta == nil {
		panic("nil client passed to NewSearchHandler")
	}
	return &SearchHandler{Meta: meta}
}

// SearchVideos handles GET /search?search_term=... and returns the upstream
// search payload verbatim. A missing or empty term and an upstream failure
// are both reported through the same JSON error channel; the validation
// message matches what clients of the original form handler expect.
func (h *SearchHandler) SearchVideos(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("search_term"))
	if term == "" {
		return c.JSON(http.StatusOK, echo.Map{"error": "not able to validate form"})
	}

	payload, err := h.Meta.Search(c.Request().Context(), term, youtube.DefaultSearchLimit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "search failed"})
	}
	return c.JSONBlob(http.StatusOK, payload)
}
