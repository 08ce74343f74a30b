package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/access"
	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/repository"
)

// FloorHandler manages floors of the caller's hostel.
type FloorHandler struct {
	Floors *repository.FloorRepo
}

func NewFloorHandler(f *repository.FloorRepo) *FloorHandler {
	return &FloorHandler{Floors: f}
}

type floorReq struct {
	HostelID    uint64  `json:"hostel_id"`
	FloorNumber *int    `json:"floor_number" validate:"required,min=-5,max=200"`
	FloorName   *string `json:"floor_name" validate:"omitempty,max=100"`
}

// load fetches a floor the caller may see.  Floors of other hostels are
// reported as missing.
func (h *FloorHandler) load(ctx context.Context, scope access.Scope, id uint64) (*model.Floor, error) {
	f, err := h.Floors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(f.HostelID) {
		return nil, repository.ErrFloorNotFound
	}
	return f, nil
}

func (h *FloorHandler) Create(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	var req floorReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	hid, err := hostelFor(scope, req.HostelID)
	if err != nil {
		return fail(err)
	}
	f := model.Floor{HostelID: hid, FloorNumber: *req.FloorNumber, FloorName: req.FloorName}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Floors.Create(ctx, &f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "floor number already exists in this hostel"})
		}
		return fail(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FloorHandler) List(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	requested, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	hid, ok := scope.Filter(requested)
	if !ok {
		return fail(repository.ErrForbidden)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Floors.ListByHostel(ctx, hid)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *FloorHandler) Update(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req floorReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.load(ctx, scope, id)
	if err != nil {
		return fail(err)
	}
	f.FloorNumber, f.FloorName = *req.FloorNumber, req.FloorName
	if err := h.Floors.Update(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "floor number already exists in this hostel"})
		}
		return fail(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FloorHandler) Delete(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.load(ctx, scope, id); err != nil {
		return fail(err)
	}
	if err := h.Floors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "floor still has rooms; move or delete them first"})
		}
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
