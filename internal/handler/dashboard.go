package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/queue"
	"github.com/hostellog/hostel-admin/internal/service"
)

// DashboardHandler serves the console landing page data.
type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func NewDashboardHandler(d *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

// Stats returns bed and room counts, optionally for ?hostel_id=.
func (h *DashboardHandler) Stats(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	hostelID, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Dashboard.Stats(ctx, scope, hostelID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Activity returns the latest occupancy events, newest first.  ?limit=
// is capped at the feed size.
func (h *DashboardHandler) Activity(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	hostelID, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	limit := 20
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive number"})
		}
		limit = min(n, queue.FeedSize)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Dashboard.RecentActivity(ctx, scope, hostelID, limit)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
