package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/access"
	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/repository"
	"github.com/hostellog/hostel-admin/internal/service"
)

// RoomHandler serves room inventory.  Occupancy fields are read-only
// here; every change to them goes through the OccupancyService.
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	Guests    *repository.GuestRepo
	Occupancy *service.OccupancyService
}

func NewRoomHandler(r *repository.RoomRepo, g *repository.GuestRepo, occ *service.OccupancyService) *RoomHandler {
	return &RoomHandler{Rooms: r, Guests: g, Occupancy: occ}
}

type createRoomReq struct {
	HostelID        uint64 `json:"hostel_id"`
	FloorID         uint64 `json:"floor_id" validate:"required"`
	RoomNumber      string `json:"room_number" validate:"required,max=20"`
	SharingType     int    `json:"sharing_type" validate:"required,min=1,max=20"`
	RentAmountCents uint32 `json:"rent_amount_cents"`
}

type updateRoomReq struct {
	FloorID         uint64  `json:"floor_id"`
	RoomNumber      string  `json:"room_number" validate:"omitempty,max=20"`
	SharingType     int     `json:"sharing_type" validate:"omitempty,min=1,max=20"`
	RentAmountCents *uint32 `json:"rent_amount_cents"`
}

type roomDetail struct {
	*model.Room
	FreeBeds  int `json:"free_beds"`
	Occupants any `json:"occupants"`
}

// occupantRef is what callers without guest access see of an occupant.
type occupantRef struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
}

// occupantsFor hides guest profiles from roles that may not view guests.
func occupantsFor(scope access.Scope, occ []*model.Guest) any {
	if access.Can(scope.Role, access.ViewGuests) {
		return occ
	}
	refs := make([]occupantRef, 0, len(occ))
	for _, g := range occ {
		refs = append(refs, occupantRef{ID: g.ID, FullName: g.FullName})
	}
	return refs
}

func (h *RoomHandler) Create(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	var req createRoomReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	hid, err := hostelFor(scope, req.HostelID)
	if err != nil {
		return fail(err)
	}
	rm := model.Room{
		HostelID:        hid,
		FloorID:         req.FloorID,
		RoomNumber:      strings.TrimSpace(req.RoomNumber),
		SharingType:     req.SharingType,
		RentAmountCents: req.RentAmountCents,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, &rm); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists on this floor"})
		}
		return fail(err)
	}
	return c.JSON(http.StatusCreated, rm)
}

// List supports ?hostel_id=, ?floor_id= and ?status=.
func (h *RoomHandler) List(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	requested, ok1 := queryID(c, "hostel_id")
	floorID, ok2 := queryID(c, "floor_id")
	if !ok1 || !ok2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id filter"})
	}
	status := model.RoomStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available, partial, full or maintenance"})
	}
	hid, ok := scope.Filter(requested)
	if !ok {
		return fail(repository.ErrForbidden)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Rooms.List(ctx, repository.RoomFilter{HostelID: hid, FloorID: floorID, Status: status})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns the room with its active occupants.
func (h *RoomHandler) Get(c echo.Context) error {
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

	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return fail(err)
	}
	if !scope.Allows(rm.HostelID) {
		return fail(repository.ErrRoomNotFound)
	}
	occ, err := h.Guests.List(ctx, repository.GuestFilter{RoomID: id, Status: model.GuestActive})
	if err != nil {
		return fail(err)
	}
	if occ == nil {
		occ = []*model.Guest{}
	}
	return c.JSON(http.StatusOK, roomDetail{Room: rm, FreeBeds: rm.FreeBeds(), Occupants: occupantsFor(scope, occ)})
}

func (h *RoomHandler) Update(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateRoomReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rm, err := h.Occupancy.UpdateRoom(ctx, scope, id, service.RoomChanges{
		FloorID:         req.FloorID,
		RoomNumber:      strings.TrimSpace(req.RoomNumber),
		SharingType:     req.SharingType,
		RentAmountCents: req.RentAmountCents,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists on this floor"})
		}
		return fail(err)
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *RoomHandler) Delete(c echo.Context) error {
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

	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return fail(err)
	}
	if !scope.Allows(rm.HostelID) {
		return fail(repository.ErrRoomNotFound)
	}
	if err := h.Rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room still has guests; vacate them first"})
		}
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetMaintenance takes an empty room out of service.
func (h *RoomHandler) SetMaintenance(c echo.Context) error {
	return h.maintenance(c, h.Occupancy.SetMaintenance)
}

// ClearMaintenance returns a room to service.
func (h *RoomHandler) ClearMaintenance(c echo.Context) error {
	return h.maintenance(c, h.Occupancy.ClearMaintenance)
}

func (h *RoomHandler) maintenance(c echo.Context, op func(context.Context, access.Scope, uint64) (model.Room, error)) error {
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

	rm, err := op(ctx, scope, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rm)
}
