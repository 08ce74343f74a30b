package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/repository"
)

// HostelHandler serves admin-only hostel management.
type HostelHandler struct {
	Hostels *repository.HostelRepo
}

func NewHostelHandler(h *repository.HostelRepo) *HostelHandler {
	return &HostelHandler{Hostels: h}
}

type hostelReq struct {
	Name    string  `json:"name" validate:"required,max=150"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
}

// hostelPatch leaves nil fields untouched.
type hostelPatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=150"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
}

func (r hostelReq) apply(h *model.Hostel) {
	h.Name = strings.TrimSpace(r.Name)
	h.Address, h.Email, h.Phone = r.Address, r.Email, r.Phone
}

func (h *HostelHandler) Create(c echo.Context) error {
	var req hostelReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	var hs model.Hostel
	req.apply(&hs)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hostels.Create(ctx, &hs); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, hs)
}

func (h *HostelHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Hostels.List(ctx)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *HostelHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hs, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, hs)
}

// Update replaces every editable field.
func (h *HostelHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hostelReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hs, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		return fail(err)
	}
	req.apply(hs)
	if err := h.Hostels.Update(ctx, hs); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, hs)
}

// Patch changes only the fields present in the body.
func (h *HostelHandler) Patch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hostelPatch
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hs, err := h.Hostels.GetByID(ctx, id)
	if err != nil {
		return fail(err)
	}
	if req.Name != nil {
		hs.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		hs.Address = req.Address
	}
	if req.Email != nil {
		hs.Email = req.Email
	}
	if req.Phone != nil {
		hs.Phone = req.Phone
	}
	if err := h.Hostels.Update(ctx, hs); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, hs)
}
