package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/repository"
	"github.com/hostellog/hostel-admin/internal/service"
)

// GuestHandler serves guest registration and the occupancy operations on
// a guest.
type GuestHandler struct {
	Guests    *repository.GuestRepo
	Occupancy *service.OccupancyService
	Exporter  *service.Exporter
}

func NewGuestHandler(g *repository.GuestRepo, occ *service.OccupancyService, exp *service.Exporter) *GuestHandler {
	return &GuestHandler{Guests: g, Occupancy: occ, Exporter: exp}
}

// guestProfile holds the fields staff may edit freely.  Amounts are in
// cents and dates use YYYY-MM-DD.
type guestProfile struct {
	FullName           string  `json:"full_name" validate:"required,max=150"`
	Phone              string  `json:"phone" validate:"required,max=20"`
	Email              *string `json:"email" validate:"omitempty,email"`
	DateOfBirth        string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ParentName         *string `json:"parent_name" validate:"omitempty,max=150"`
	ParentContact      *string `json:"parent_contact" validate:"omitempty,max=20"`
	Purpose            *string `json:"purpose" validate:"omitempty,max=100"`
	PermanentAddress   *string `json:"permanent_address" validate:"omitempty,max=255"`
	OfficeAddress      *string `json:"office_address" validate:"omitempty,max=255"`
	GovernmentID       *string `json:"government_id" validate:"omitempty,max=50"`
	PayingAmountCents  uint32  `json:"paying_amount_cents"`
	AdvanceAmountCents uint32  `json:"advance_amount_cents"`
	JoinDate           string  `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
}

type createGuestReq struct {
	guestProfile
	HostelID uint64 `json:"hostel_id"`
	RoomID   uint64 `json:"room_id"`
}

type assignReq struct {
	RoomID uint64 `json:"room_id" validate:"required"`
}

type vacateReq struct {
	RoomID uint64 `json:"room_id"`
}

// apply copies the profile onto g.  A missing join date defaults to today
// on create and is kept on update.
func (p guestProfile) apply(g *model.Guest) error {
	dob, err := parseDate(p.DateOfBirth)
	if err != nil {
		return err
	}
	join, err := parseDate(p.JoinDate)
	if err != nil {
		return err
	}
	g.FullName = strings.TrimSpace(p.FullName)
	g.Phone = strings.TrimSpace(p.Phone)
	g.Email = p.Email
	g.DateOfBirth = dob
	g.ParentName, g.ParentContact, g.Purpose = p.ParentName, p.ParentContact, p.Purpose
	g.PermanentAddress, g.OfficeAddress, g.GovernmentID = p.PermanentAddress, p.OfficeAddress, p.GovernmentID
	g.PayingAmountCents, g.AdvanceAmountCents = p.PayingAmountCents, p.AdvanceAmountCents
	switch {
	case join != nil:
		g.JoinDate = *join
	case g.JoinDate.IsZero():
		g.JoinDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return nil
}

// Create registers an active guest and, when room_id is given, assigns
// the bed in the same step.
func (h *GuestHandler) Create(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	var req createGuestReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	hid, err := hostelFor(scope, req.HostelID)
	if err != nil {
		return fail(err)
	}
	g := model.Guest{HostelID: hid}
	if err := req.apply(&g); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must use YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Occupancy.RegisterGuest(ctx, scope, &g, req.RoomID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// List supports ?hostel_id=, ?room_id= and ?status=.
func (h *GuestHandler) List(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	requested, ok1 := queryID(c, "hostel_id")
	roomID, ok2 := queryID(c, "room_id")
	if !ok1 || !ok2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id filter"})
	}
	status := model.GuestStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active, inactive or checked_out"})
	}
	hid, ok := scope.Filter(requested)
	if !ok {
		return fail(repository.ErrForbidden)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Guests.List(ctx, repository.GuestFilter{HostelID: hid, RoomID: roomID, Status: status})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Search pages through the register: ?q= matches name, phone or ID
// number; ?status=, ?page= and ?page_size= (max 100) narrow it.
func (h *GuestHandler) Search(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	requested, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	status := model.GuestStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active, inactive or checked_out"})
	}
	hid, ok := scope.Filter(requested)
	if !ok {
		return fail(repository.ErrForbidden)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Guests.Search(ctx, repository.GuestSearchQuery{
		HostelID: hid,
		Text:     c.QueryParam("q"),
		Status:   status,
		Page:     page,
		PageSize: ps,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

func (h *GuestHandler) load(ctx context.Context, c echo.Context) (*model.Guest, error) {
	scope, err := scopeOf(c)
	if err != nil {
		return nil, err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	g, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		return nil, fail(err)
	}
	if !scope.Allows(g.HostelID) {
		return nil, fail(repository.ErrGuestNotFound)
	}
	return g, nil
}

func (h *GuestHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.load(ctx, c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Update edits the profile.  Room and status are not accepted here.
func (h *GuestHandler) Update(c echo.Context) error {
	var req guestProfile
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.load(ctx, c)
	if err != nil {
		return err
	}
	if err := req.apply(g); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must use YYYY-MM-DD"})
	}
	if err := h.Guests.Update(ctx, g); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, g)
}

// Assign gives the guest a bed, moving them when they already hold one.
func (h *GuestHandler) Assign(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Occupancy.Assign(ctx, scope, id, req.RoomID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"guest":         a.Guest,
		"room":          a.Room,
		"previous_room": a.Previous,
	})
}

// Vacate checks the guest out of their room.
func (h *GuestHandler) Vacate(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req vacateReq
	if c.Request().ContentLength > 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Occupancy.Vacate(ctx, scope, id, req.RoomID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"guest": v.Guest, "room": v.Room})
}

// Reactivate brings a checked-out guest back without a room.
func (h *GuestHandler) Reactivate(c echo.Context) error {
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

	g, err := h.Occupancy.Reactivate(ctx, scope, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, g)
}

// Deactivate puts an active guest on hold and frees the guest's bed.
func (h *GuestHandler) Deactivate(c echo.Context) error {
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

	d, err := h.Occupancy.Deactivate(ctx, scope, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"guest": d.Guest, "room": d.Room})
}

// Delete removes a guest, vacating the guest's bed first.
func (h *GuestHandler) Delete(c echo.Context) error {
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

	if _, err := h.Occupancy.RemoveGuest(ctx, scope, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export downloads the guest register as an Excel workbook.
func (h *GuestHandler) Export(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	requested, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	status := model.GuestStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active, inactive or checked_out"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	data, err := h.Exporter.GuestRegister(ctx, scope, requested, status)
	if err != nil {
		return fail(err)
	}
	name := "guests-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
