package middleware

// identity.go turns the claims JWTAuth placed in the context back into
// a typed model.Actor.  Everything downstream of the middleware works
// with the Actor; raw claims never leak into handlers or the engine.

import (
	"errors"
	"strconv"

	"github.com/openfms/facility-desk/internal/model"
	"github.com/labstack/echo/v4"
)

// CurrentActor builds the acting identity from the verified JWT
// claims.  It fails when the context carries no usable subject or an
// unknown role, which should only happen on routes missing the JWTAuth
// middleware.
func CurrentActor(c echo.Context) (model.Actor, error) {
	id, err := claimUint64(c.Get("user_id"))
	if err != nil || id == 0 {
		return model.Actor{}, errors.New("no authenticated user in context")
	}
	roleStr, _ := c.Get("role").(string)
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return model.Actor{}, err
	}
	name, _ := c.Get("name").(string)
	dept, _ := c.Get("dept").(string)
	return model.Actor{ID: id, Role: role, Name: name, Department: dept}, nil
}

// claimUint64 copes with the numeric types a JWT claim may decode to.
func claimUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		return strconv.ParseUint(t, 10, 64)
	}
	return 0, errors.New("missing numeric claim")
}

// rateLimitUserID is the limiter's view of the caller: the numeric
// subject when authenticated, "anon" otherwise.
func rateLimitUserID(c echo.Context) string {
	if id, err := claimUint64(c.Get("user_id")); err == nil && id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
