package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/access"
	"github.com/hostellog/hostel-admin/internal/middleware"
	"github.com/hostellog/hostel-admin/internal/occupancy"
	"github.com/hostellog/hostel-admin/internal/repository"
)

const dateLayout = "2006-01-02"

// requestValidator plugs validator/v10 into echo.  Field names in error
// messages use the json tag.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed as echo.Echo.Validator.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

// bind decodes and validates the body into req.  It writes the 400
// response itself and reports whether the handler should continue.
func bind(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			msg := fe.Field() + " is invalid (" + fe.Tag()
			if fe.Param() != "" {
				msg += "=" + fe.Param()
			}
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": msg + ")"})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// queryID parses an optional numeric query parameter; absent means 0.
func queryID(c echo.Context, name string) (uint64, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(s, 10, 64)
	return id, err == nil
}

// scopeOf resolves the hostels visible to the authenticated caller.
func scopeOf(c echo.Context) (access.Scope, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return access.Scope{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	scope, err := id.Scope()
	if err != nil {
		return access.Scope{}, echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return scope, nil
}

// hostelFor resolves the hostel a write goes to.  Non-admins always write
// to their own hostel; admins must name one.
func hostelFor(scope access.Scope, requested uint64) (uint64, error) {
	hid, ok := scope.Filter(requested)
	if !ok {
		return 0, repository.ErrForbidden
	}
	if hid == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "hostel_id is required")
	}
	return hid, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// statusOf maps domain and store errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, occupancy.ErrCapacityExceeded):
		return http.StatusInternalServerError
	case errors.Is(err, occupancy.ErrRoomFull),
		errors.Is(err, occupancy.ErrRoomOccupied),
		errors.Is(err, occupancy.ErrRoomInMaintenance),
		errors.Is(err, occupancy.ErrAlreadyAssigned),
		errors.Is(err, occupancy.ErrNotInMaintenance),
		errors.Is(err, occupancy.ErrAlreadyActive),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, occupancy.ErrGuestNotActive),
		errors.Is(err, occupancy.ErrNotAssigned),
		errors.Is(err, occupancy.ErrHostelMismatch),
		errors.Is(err, occupancy.ErrTransferSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrHostelNotFound),
		errors.Is(err, repository.ErrFloorNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrGuestNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden), errors.Is(err, access.ErrNoHostel):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// fail converts err into an *echo.HTTPError.  Internal failures keep the
// cause for the request logger but show the client a generic message.
func fail(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := statusOf(err)
	msg := err.Error()
	switch {
	case errors.Is(err, repository.ErrConflict):
		msg = "the room was changed by another request, please retry"
	case status == http.StatusInternalServerError:
		msg = "internal error"
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

// HTTPErrorHandler renders every error as {"error": "..."}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
