package middleware

// identity.go holds the authenticated caller extracted by JWTAuth and the
// helpers that derive per-caller keys for the cache and the rate limiter.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/hostellog/hostel-admin/internal/access"
    "github.com/hostellog/hostel-admin/internal/model"
)

const identityKey = "identity"

// Identity is the caller behind a verified access token.
type Identity struct {
    UserID   uint64
    Role     model.Role
    HostelID *uint64
}

// Scope resolves the hostels the caller may touch.
func (id Identity) Scope() (access.Scope, error) {
    return access.ScopeFor(id.Role, id.HostelID)
}

// SetIdentity stores the caller on the context.  JWTAuth is the only
// production caller; tests use it to skip token minting.
func SetIdentity(c echo.Context, id Identity) {
    c.Set(identityKey, id)
    c.Set("user_id", id.UserID)
    c.Set("role", id.Role)
}

// CurrentIdentity returns the caller stored by JWTAuth.
func CurrentIdentity(c echo.Context) (Identity, bool) {
    id, ok := c.Get(identityKey).(Identity)
    return id, ok
}

// userKey identifies the caller for rate limiting, "anon" when unauthenticated.
func userKey(c echo.Context) string {
    if id, ok := CurrentIdentity(c); ok {
        return strconv.FormatUint(id.UserID, 10)
    }
    return "anon"
}

// scopeKey identifies what the caller is allowed to see, so cached
// responses are never shared across hostels.
func scopeKey(c echo.Context) string {
    id, ok := CurrentIdentity(c)
    if !ok {
        return "anon"
    }
    if id.HostelID == nil {
        return string(id.Role) + ":all"
    }
    return string(id.Role) + ":" + strconv.FormatUint(*id.HostelID, 10)
}
