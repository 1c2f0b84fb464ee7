package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit int
}

// FromContext extracts the limit from the request, clamped to [1, MaxLimit].
func FromContext(c echo.Context) Params {
	return FromContextMax(c, MaxLimit)
}

// FromContextMax is FromContext with a caller-supplied ceiling; a non-positive
// max falls back to MaxLimit.
func FromContextMax(c echo.Context, max int) Params {
	if max <= 0 {
		max = MaxLimit
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > max {
		limit = max
	}
	return Params{Limit: limit}
}
